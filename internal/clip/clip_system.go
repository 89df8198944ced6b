//go:build darwin || linux || windows

package clip

import (
	"bytes"
	"log/slog"
	"time"

	"golang.design/x/clipboard"
)

const changePollInterval = 250 * time.Millisecond

type systemBackend struct {
	watchCh  chan struct{}
	done     chan struct{}
	lastText []byte
	lastImg  []byte
}

// New returns the system clipboard backend, or a headless no-op backend if
// the display environment is unavailable (e.g. a server without X11 or
// Wayland). clipboard.Init is called here rather than in init() so that
// CLI sub-commands that never touch the clipboard don't trigger the
// warning.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return &headlessBackend{watchCh: make(chan struct{})}
	}
	b := &systemBackend{
		watchCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go b.poll()
	return b
}

func (b *systemBackend) Name() string { return "system clipboard" }

// poll drives the Watch channel. golang.design/x/clipboard's own Watch
// streams payloads per format; a single change-detection loop over both
// formats gives one signal per clipboard transition instead.
func (b *systemBackend) poll() {
	t := time.NewTicker(changePollInterval)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			text := clipboard.Read(clipboard.FmtText)
			img := clipboard.Read(clipboard.FmtImage)
			if !bytes.Equal(text, b.lastText) || !bytes.Equal(img, b.lastImg) {
				b.lastText = text
				b.lastImg = img
				select {
				case b.watchCh <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (b *systemBackend) Read() (Snapshot, error) {
	return Snapshot{
		Text:  string(clipboard.Read(clipboard.FmtText)),
		Image: clipboard.Read(clipboard.FmtImage),
	}, nil
}

func (b *systemBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *systemBackend) WriteImage(data []byte) error {
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

func (b *systemBackend) Watch() <-chan struct{} { return b.watchCh }
func (b *systemBackend) Close()                 { close(b.done) }
