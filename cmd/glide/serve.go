package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dagimg-dot/Glide/internal/blob"
	"github.com/dagimg-dot/Glide/internal/capture"
	"github.com/dagimg-dot/Glide/internal/clip"
	"github.com/dagimg-dot/Glide/internal/daemon"
	"github.com/dagimg-dot/Glide/internal/history"
	"github.com/dagimg-dot/Glide/internal/ipc"
	"github.com/dagimg-dot/Glide/internal/rowstore"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clipboard capture daemon",
		Long: `Watches the system clipboard from two capture paths (a change
listener and a poller), records new content into the history database, and
serves the control socket the other sub-commands talk to.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runServe(v) },
	}

	f := cmd.Flags()
	f.Int("max-items", history.DefaultMaxItems, "history capacity (unpinned entries count against it)")
	f.Duration("cooldown", capture.DefaultCooldown, "duplicate-capture suppression window")
	f.Int("preview-length", 0, "characters of text shown in previews (default 100)")
	f.Duration("poll-interval", capture.DefaultPollInterval, "poller re-read interval")
	f.String("db", "", "history database path (default: data dir)")
	f.String("blob-dir", "", "image blob directory (default: data dir)")
	f.Bool("ephemeral", false, "keep history in memory only, nothing on disk")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runServe(v *viper.Viper) error {
	setupLogging(v)

	var (
		rows history.RowStore
		sink blob.Sink
	)
	if v.GetBool("ephemeral") {
		rows = rowstore.NewMemory()
		sink = blob.NewMemory()
		slog.Info("running ephemeral, history will not survive restart")
	} else {
		dbPath := v.GetString("db")
		blobDir := v.GetString("blob-dir")
		if dbPath == "" || blobDir == "" {
			base, err := dataDir()
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = filepath.Join(base, "history.db")
			}
			if blobDir == "" {
				blobDir = filepath.Join(base, "blobs")
			}
		}

		sq, err := rowstore.OpenSQLite(dbPath)
		if err != nil {
			return fmt.Errorf("open history db: %w", err)
		}
		defer sq.Close()
		rows = sq

		dir, err := blob.NewDir(blobDir)
		if err != nil {
			return err
		}
		sink = dir
		slog.Info("history storage ready", "db", dbPath, "blobs", blobDir)
	}

	store := history.New(rows, sink, history.Config{
		MaxItems:      v.GetInt("max-items"),
		PreviewLength: v.GetInt("preview-length"),
	})
	coord := capture.NewCoordinator(v.GetDuration("cooldown"))

	backend := clip.New()
	defer backend.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := capture.NewRecorder(coord, store)
	go capture.NewWatcher(backend, rec).Run(ctx)
	go capture.NewPoller(backend, rec, v.GetDuration("poll-interval")).Run(ctx)

	ln, err := ipc.Listen()
	if err != nil {
		return fmt.Errorf("listen on control socket: %w", err)
	}
	defer os.Remove(ipc.SocketPath())

	slog.Info("glide daemon started",
		"socket", ipc.SocketPath(),
		"backend", backend.Name(),
		"max_items", v.GetInt("max-items"),
		"cooldown", v.GetDuration("cooldown"),
	)

	srv := daemon.New(store, coord, sink, backend)
	return srv.Serve(ctx, ln)
}

// dataDir returns (creating if needed) the glide data directory:
// $XDG_DATA_HOME/glide or ~/.local/share/glide.
func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(base, "glide")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}
