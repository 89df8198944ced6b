package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dagimg-dot/Glide/internal/message"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "Print the current clipboard history",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, _ []string) error {
			resp, err := request(&message.Message{Type: message.TypeList})
			if err != nil {
				return err
			}
			return printEntries(resp.Entries, v.GetBool("json"))
		},
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)
	return cmd
}
