package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dagimg-dot/Glide/internal/message"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream the history as it changes",
		Long: `Subscribes to the daemon's live history view and reprints the full
ordering after every change. Runs until interrupted.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runWatch(v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)
	return cmd
}

func runWatch(v *viper.Viper) error {
	wc, err := dialDaemon()
	if err != nil {
		return err
	}
	defer wc.Close()

	if err := wc.WriteMsg(&message.Message{Type: message.TypeWatch}); err != nil {
		return fmt.Errorf("send watch request: %w", err)
	}

	jsonOut := v.GetBool("json")
	for {
		resp, err := wc.ReadMsg()
		if err != nil {
			return nil // daemon went away
		}
		if resp.Type == message.TypeError {
			return fmt.Errorf("daemon: %s", resp.Error)
		}
		if !jsonOut {
			fmt.Println()
		}
		if err := printEntries(resp.Entries, jsonOut); err != nil {
			return err
		}
	}
}
