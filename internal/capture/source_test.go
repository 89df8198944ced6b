package capture

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagimg-dot/Glide/internal/blob"
	"github.com/dagimg-dot/Glide/internal/clip"
	"github.com/dagimg-dot/Glide/internal/history"
	"github.com/dagimg-dot/Glide/internal/rowstore"
)

// fakeBackend is a scriptable clipboard for source tests.
type fakeBackend struct {
	mu      sync.Mutex
	snap    clip.Snapshot
	watchCh chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{watchCh: make(chan struct{}, 1)}
}

func (b *fakeBackend) set(s clip.Snapshot) {
	b.mu.Lock()
	b.snap = s
	b.mu.Unlock()
	select {
	case b.watchCh <- struct{}{}:
	default:
	}
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Read() (clip.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap, nil
}

func (b *fakeBackend) WriteText(text string) error  { b.set(clip.Snapshot{Text: text}); return nil }
func (b *fakeBackend) WriteImage(data []byte) error { b.set(clip.Snapshot{Image: data}); return nil }
func (b *fakeBackend) Watch() <-chan struct{}       { return b.watchCh }
func (b *fakeBackend) Close()                       {}

func newCaptureFixture(t *testing.T) (*Recorder, *history.Store, *Coordinator) {
	t.Helper()
	store := history.New(rowstore.NewMemory(), blob.NewMemory(), history.Config{MaxItems: 10})
	coord := NewCoordinator(500 * time.Millisecond)
	return NewRecorder(coord, store), store, coord
}

func waitForLen(t *testing.T, store *history.Store, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		all, err := store.List(context.Background())
		require.NoError(t, err)
		if len(all) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	all, _ := store.List(context.Background())
	t.Fatalf("store never reached %d entries, has %d", want, len(all))
}

func TestRecorderTextAndImage(t *testing.T) {
	rec, store, _ := newCaptureFixture(t)
	ctx := context.Background()

	rec.Record(ctx, clip.Snapshot{Text: "copied text"})
	rec.Record(ctx, clip.Snapshot{Image: []byte("png")})

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].IsImage())
	assert.Equal(t, "copied text", all[1].Text())
}

func TestRecorderSuppressesRacingDuplicate(t *testing.T) {
	rec, store, _ := newCaptureFixture(t)
	ctx := context.Background()

	// Both sources report the same copy event back-to-back.
	rec.Record(ctx, clip.Snapshot{Text: "once"})
	rec.Record(ctx, clip.Snapshot{Text: "once"})

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestWatcherRecordsOnChangeSignal(t *testing.T) {
	rec, store, _ := newCaptureFixture(t)
	backend := newFakeBackend()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewWatcher(backend, rec).Run(ctx)

	backend.set(clip.Snapshot{Text: "from watcher"})
	waitForLen(t, store, 1)
}

func TestPollerSkipsUnchangedContent(t *testing.T) {
	rec, store, _ := newCaptureFixture(t)
	backend := newFakeBackend()
	backend.set(clip.Snapshot{Text: "steady"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewPoller(backend, rec, 10*time.Millisecond).Run(ctx)

	waitForLen(t, store, 1)

	// The payload stays on the clipboard past the cooldown; the poller's
	// own change detection keeps it from bumping the entry every tick.
	before, err := store.List(context.Background())
	require.NoError(t, err)
	time.Sleep(700 * time.Millisecond)
	after, err := store.List(context.Background())
	require.NoError(t, err)

	require.Len(t, after, 1)
	assert.True(t, after[0].Timestamp.Equal(before[0].Timestamp),
		"unchanged clipboard must not re-bump the entry")
}

func TestWatcherAndPollerTogetherYieldOneEntry(t *testing.T) {
	rec, store, _ := newCaptureFixture(t)
	backend := newFakeBackend()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewWatcher(backend, rec).Run(ctx)
	go NewPoller(backend, rec, 10*time.Millisecond).Run(ctx)

	backend.set(clip.Snapshot{Text: "seen by both"})
	waitForLen(t, store, 1)

	// Give the second source time to observe the same content.
	time.Sleep(100 * time.Millisecond)
	all, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1, "the coordinator admits only one of the two observations")
}
