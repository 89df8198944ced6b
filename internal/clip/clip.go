// Package clip provides a unified interface to the system clipboard.
// Build constraints select the implementation:
//
//	clip_system.go — desktop platforms via golang.design/x/clipboard
//	clip_other.go  — headless / container stub
package clip

// Snapshot is one observation of the clipboard: the text payload and/or
// the PNG image payload, whichever formats are populated.
type Snapshot struct {
	Text  string
	Image []byte
}

// Empty reports whether the snapshot carries no content at all.
func (s Snapshot) Empty() bool {
	return s.Text == "" && len(s.Image) == 0
}

// Backend is the platform clipboard.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard contents.
	Read() (Snapshot, error)

	// WriteText replaces the clipboard with plain text.
	WriteText(text string) error

	// WriteImage replaces the clipboard with PNG image bytes.
	WriteImage(data []byte) error

	// Watch returns a channel that receives a signal whenever the
	// clipboard changes. The channel is never closed; the caller should
	// Read() when it receives from it.
	Watch() <-chan struct{}

	// Close releases any resources held by the backend.
	Close()
}
