package capture

import (
	"context"
	"log/slog"
	"time"

	"github.com/dagimg-dot/Glide/internal/clip"
	"github.com/dagimg-dot/Glide/internal/entry"
	"github.com/dagimg-dot/Glide/internal/history"
)

// DefaultPollInterval is how often the Poller re-reads the clipboard.
const DefaultPollInterval = time.Second

// Recorder is the shared submit path for all capture sources: gate an
// observation through the coordinator, then insert it. Store failures are
// logged and swallowed — a dropped clipboard event is acceptable, a dead
// capture loop is not.
type Recorder struct {
	coord *Coordinator
	store *history.Store
}

// NewRecorder wires a recorder to the shared coordinator and store.
func NewRecorder(coord *Coordinator, store *history.Store) *Recorder {
	return &Recorder{coord: coord, store: store}
}

// Record submits one clipboard snapshot. Text wins over image when a
// snapshot carries both, matching how a copied image with a text
// representation should be filed once, not twice.
func (r *Recorder) Record(ctx context.Context, snap clip.Snapshot) {
	switch {
	case snap.Text != "":
		if r.coord.ShouldIgnore(snap.Text, "") {
			return
		}
		res, err := r.store.InsertText(ctx, snap.Text, "")
		if err != nil {
			slog.Warn("text capture failed", "err", err)
			return
		}
		logResult(res, "text")
	case len(snap.Image) > 0:
		ref := entry.FingerprintBytes(snap.Image)
		if r.coord.ShouldIgnore("", ref) {
			return
		}
		res, err := r.store.InsertImage(ctx, snap.Image, "")
		if err != nil {
			slog.Warn("image capture failed", "err", err)
			return
		}
		logResult(res, "image")
	}
}

func logResult(res history.InsertResult, kind string) {
	switch res {
	case history.ResultInserted:
		slog.Debug("captured clipboard entry", "kind", kind)
	case history.ResultBumped:
		slog.Debug("bumped existing entry", "kind", kind)
	}
}

// Watcher is the passive capture source: it reads the clipboard whenever
// the backend signals a change.
type Watcher struct {
	backend clip.Backend
	rec     *Recorder
}

// NewWatcher returns a watcher over the given backend.
func NewWatcher(backend clip.Backend, rec *Recorder) *Watcher {
	return &Watcher{backend: backend, rec: rec}
}

// Run blocks until ctx is cancelled; call in a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	slog.Info("clipboard watcher started", "backend", w.backend.Name())
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.backend.Watch():
			snap, err := w.backend.Read()
			if err != nil {
				slog.Warn("clipboard read failed", "err", err)
				continue
			}
			if snap.Empty() {
				continue
			}
			w.rec.Record(ctx, snap)
		}
	}
}

// Poller is the second, independent capture source: it re-reads the
// clipboard on an interval and submits anything that differs from its own
// last observation. It exists because change notification is not reliable
// in every environment; when both sources see the same change the
// coordinator lets only one of them through.
type Poller struct {
	backend  clip.Backend
	rec      *Recorder
	interval time.Duration

	lastFP string
}

// NewPoller returns a poller with the given interval (<= 0 selects
// DefaultPollInterval).
func NewPoller(backend clip.Backend, rec *Recorder, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{backend: backend, rec: rec, interval: interval}
}

// Run blocks until ctx is cancelled; call in a goroutine.
func (p *Poller) Run(ctx context.Context) {
	slog.Info("clipboard poller started", "interval", p.interval)
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			snap, err := p.backend.Read()
			if err != nil {
				slog.Warn("clipboard poll read failed", "err", err)
				continue
			}
			if snap.Empty() {
				continue
			}
			// Local change detection: an unchanged clipboard is not
			// an observation, so a long-lived payload is not
			// re-submitted every tick.
			fp := entry.FingerprintText(snap.Text)
			if fp == "" {
				fp = entry.FingerprintBytes(snap.Image)
			}
			if fp == p.lastFP {
				continue
			}
			p.lastFP = fp
			p.rec.Record(ctx, snap)
		}
	}
}
