package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dagimg-dot/Glide/internal/ipc"
	"github.com/dagimg-dot/Glide/internal/message"
	"github.com/dagimg-dot/Glide/internal/wire"
)

// dialDaemon connects to the running daemon's control socket.
func dialDaemon() (*wire.Conn, error) {
	if !ipc.IsRunning() {
		return nil, fmt.Errorf("no glide daemon on %s (start one with \"glide serve\")", ipc.SocketPath())
	}
	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return wire.New(conn), nil
}

// request performs one request/response exchange with the daemon,
// converting an ERROR reply into a Go error.
func request(req *message.Message) (*message.Message, error) {
	wc, err := dialDaemon()
	if err != nil {
		return nil, err
	}
	defer wc.Close()

	if err := wc.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.Type == message.TypeError {
		return nil, fmt.Errorf("daemon: %s", resp.Error)
	}
	return resp, nil
}

// printEntries renders a history snapshot as a table or raw JSON.
func printEntries(entries []message.EntryView, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tPIN\tWHEN\tPREVIEW")
	for _, e := range entries {
		pin := ""
		if e.Pinned {
			pin = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Kind, pin, e.Timestamp.Local().Format("15:04:05"), e.Preview)
	}
	return w.Flush()
}
