// glide: clipboard history daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dagimg-dot/Glide/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "glide",
		Short: "Clipboard history daemon",
		Long: `glide watches the system clipboard and keeps a bounded, pin-aware
history of everything copied: text entries are deduplicated, images are
stored as content-addressed blobs.

Run "glide serve" to start the daemon. The other sub-commands (list,
watch, pin, delete, clear, copy) talk to the running daemon over a local
Unix socket.

Config file search order (first found wins):
  /etc/glide/glide.toml
  $HOME/.config/glide/glide.toml
  path supplied via --config

All flags can be set via GLIDE_<FLAG> env vars or config-file keys.
See "glide serve --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newListCmd(),
		newWatchCmd(),
		newPinCmd(),
		newDeleteCmd(),
		newClearCmd(),
		newCopyCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("glide %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
