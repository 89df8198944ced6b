package capture

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dagimg-dot/Glide/internal/entry"
)

// fakeClock lets tests advance the coordinator's notion of time.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestCoordinator(cooldown time.Duration) (*Coordinator, *fakeClock) {
	clk := newFakeClock()
	c := NewCoordinator(cooldown)
	c.now = clk.now
	return c, clk
}

func TestShouldIgnoreWithinCooldown(t *testing.T) {
	c, clk := newTestCoordinator(500 * time.Millisecond)

	assert.False(t, c.ShouldIgnore("x", ""), "first observation accepted")
	clk.advance(100 * time.Millisecond)
	assert.True(t, c.ShouldIgnore("x", ""), "repeat at t=100ms suppressed")
}

func TestAcceptsSameContentAfterCooldown(t *testing.T) {
	c, clk := newTestCoordinator(500 * time.Millisecond)

	assert.False(t, c.ShouldIgnore("x", ""))
	clk.advance(600 * time.Millisecond)
	assert.False(t, c.ShouldIgnore("x", ""), "re-copy after cooldown is a fresh event")
}

func TestDifferentContentNotSuppressed(t *testing.T) {
	c, clk := newTestCoordinator(500 * time.Millisecond)

	assert.False(t, c.ShouldIgnore("x", ""))
	clk.advance(10 * time.Millisecond)
	assert.False(t, c.ShouldIgnore("y", ""))
}

func TestSlidingWindow(t *testing.T) {
	c, clk := newTestCoordinator(500 * time.Millisecond)

	// The window slides: each suppressed repeat does not extend it, the
	// accepted observation set it. One accept at t=0, repeat at 400ms is
	// suppressed, repeat at 600ms is accepted again.
	assert.False(t, c.ShouldIgnore("x", ""))
	clk.advance(400 * time.Millisecond)
	assert.True(t, c.ShouldIgnore("x", ""))
	clk.advance(200 * time.Millisecond)
	assert.False(t, c.ShouldIgnore("x", ""))
}

func TestImageRefFingerprint(t *testing.T) {
	c, clk := newTestCoordinator(500 * time.Millisecond)

	assert.False(t, c.ShouldIgnore("", "ref-1"))
	clk.advance(50 * time.Millisecond)
	assert.True(t, c.ShouldIgnore("", "ref-1"))
	assert.False(t, c.ShouldIgnore("", "ref-2"))
}

func TestEmptyCandidateIgnored(t *testing.T) {
	c, _ := newTestCoordinator(0)
	assert.True(t, c.ShouldIgnore("", ""))
}

func TestImagePlaceholderAlwaysIgnored(t *testing.T) {
	c, clk := newTestCoordinator(500 * time.Millisecond)

	assert.True(t, c.ShouldIgnore(entry.ImageLabel, ""))
	clk.advance(time.Hour)
	assert.True(t, c.ShouldIgnore(entry.ImageLabel, ""), "placeholder ignored regardless of timing")
}

func TestSelfCopySuppressedOnBothSources(t *testing.T) {
	c, clk := newTestCoordinator(500 * time.Millisecond)

	fp := entry.FingerprintText("from history")
	c.MarkSelfCopy(fp)

	// First source observes the re-copy.
	assert.True(t, c.ShouldIgnore("from history", ""))
	// Second source a moment later.
	clk.advance(50 * time.Millisecond)
	assert.True(t, c.ShouldIgnore("from history", ""))
}

func TestSelfCopySuppressionOutlivesCooldown(t *testing.T) {
	c, clk := newTestCoordinator(500 * time.Millisecond)

	// The poller's default interval is longer than the cooldown, so the
	// second source can observe the daemon's own write well after the
	// window has lapsed. It must still be ignored.
	fp := entry.FingerprintText("from history")
	c.MarkSelfCopy(fp)

	assert.True(t, c.ShouldIgnore("from history", ""), "watcher sees the self-copy")
	clk.advance(600 * time.Millisecond)
	assert.True(t, c.ShouldIgnore("from history", ""),
		"poller seeing the same self-copy after the cooldown is still our own write")
	clk.advance(2 * time.Second)
	assert.True(t, c.ShouldIgnore("from history", ""),
		"the marker stays armed while the clipboard holds our own content")
}

func TestSelfCopyImageRefOutlivesCooldown(t *testing.T) {
	c, clk := newTestCoordinator(500 * time.Millisecond)

	c.MarkSelfCopy("ref-img")
	assert.True(t, c.ShouldIgnore("", "ref-img"))
	clk.advance(600 * time.Millisecond)
	assert.True(t, c.ShouldIgnore("", "ref-img"),
		"a late poll of a re-copied image must not insert a duplicate row")
}

func TestSelfCopyClearedByNewContent(t *testing.T) {
	c, clk := newTestCoordinator(500 * time.Millisecond)

	fp := entry.FingerprintText("from history")
	c.MarkSelfCopy(fp)
	assert.True(t, c.ShouldIgnore("from history", ""))

	// The user copies something else: clipboard moved on, marker stale.
	clk.advance(time.Second)
	assert.False(t, c.ShouldIgnore("fresh content", ""))

	// Re-copying the original text externally is now a legitimate event.
	clk.advance(time.Second)
	assert.False(t, c.ShouldIgnore("from history", ""))
}

func TestConcurrentDuplicateOnlyOnePasses(t *testing.T) {
	c, _ := newTestCoordinator(500 * time.Millisecond)

	const callers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !c.ShouldIgnore("raced content", "") {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted, "exactly one racing caller may pass the gate")
}
