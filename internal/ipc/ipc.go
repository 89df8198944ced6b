// Package ipc provides the local Unix-socket channel the glide CLI uses
// to talk to a running daemon.
package ipc

import (
	"net"
	"os"
	"path/filepath"
)

// SocketPath returns the path of the control socket.
//
//   - $GLIDE_SOCKET when set
//   - $XDG_RUNTIME_DIR/glide.sock when available
//   - $TMPDIR/glide.sock otherwise
func SocketPath() string {
	if s := os.Getenv("GLIDE_SOCKET"); s != "" {
		return s
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "glide.sock")
	}
	return filepath.Join(os.TempDir(), "glide.sock")
}

// IsRunning reports whether a glide daemon appears to be listening on the
// control socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := net.Dial("unix", SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a net.Listener on the socket path, removing any stale
// socket file from a previous (crashed) run first.
func Listen() (net.Listener, error) {
	path := SocketPath()
	_ = os.Remove(path)
	return net.Listen("unix", path)
}

// Dial connects to the control socket.
func Dial() (net.Conn, error) {
	return net.Dial("unix", SocketPath())
}
