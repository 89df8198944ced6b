package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagimg-dot/Glide/internal/message"
)

func newPinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle an entry's pin (pinned entries are never evicted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := request(&message.Message{Type: message.TypePin, ID: args[0]})
			return err
		},
	}
	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := request(&message.Message{Type: message.TypeDelete, ID: args[0]})
			return err
		},
	}
	return cmd
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all unpinned entries",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := request(&message.Message{Type: message.TypeClear}); err != nil {
				return err
			}
			fmt.Println("cleared")
			return nil
		},
	}
	return cmd
}

func newCopyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy <id>",
		Short: "Put an entry's content back on the system clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := request(&message.Message{Type: message.TypeCopy, ID: args[0]})
			return err
		},
	}
	return cmd
}
