// Package capture coordinates the two clipboard capture sources. Both the
// change watcher and the poller can observe the same real copy event within
// milliseconds of each other; the Coordinator is the single gate that
// decides which observation wins.
package capture

import (
	"sync"
	"time"

	"github.com/dagimg-dot/Glide/internal/entry"
)

// DefaultCooldown is the suppression window: a fingerprint seen again
// within this window is treated as the same capture event, not a re-copy.
const DefaultCooldown = 500 * time.Millisecond

// Coordinator holds the last observed clipboard fingerprint. It is
// constructed once and shared by reference with every capture source, so
// the sharing is explicit in each source's constructor signature.
type Coordinator struct {
	cooldown time.Duration
	now      func() time.Time

	mu     sync.Mutex
	lastAt time.Time
	lastFP string
	selfFP string
}

// NewCoordinator returns a gate with the given cooldown window.
// cooldown <= 0 selects DefaultCooldown.
func NewCoordinator(cooldown time.Duration) *Coordinator {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Coordinator{cooldown: cooldown, now: time.Now}
}

// ShouldIgnore reports whether an observed clipboard snapshot should be
// dropped. text is the text payload ("" for images), ref identifies an
// image capture. The check and the record of the accepted observation are
// one critical section: of two sources racing with identical content,
// exactly one passes.
func (c *Coordinator) ShouldIgnore(text, ref string) bool {
	fp := ref
	if text != "" {
		// A re-copied image entry puts its placeholder label on the
		// clipboard as text; never record that as new content.
		if text == entry.ImageLabel {
			return true
		}
		fp = entry.FingerprintText(text)
	}
	if fp == "" {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if fp == c.selfFP {
		// Our own re-copy action being observed back. The marker stays
		// armed: the second capture source may only notice the write
		// after the cooldown has lapsed and must still be ignored.
		c.lastAt = c.now()
		c.lastFP = fp
		return true
	}
	// Different content means the clipboard has moved on; the self
	// marker is stale from here.
	c.selfFP = ""

	now := c.now()
	if fp == c.lastFP && now.Sub(c.lastAt) < c.cooldown {
		return true
	}

	c.lastAt = now
	c.lastFP = fp
	return false
}

// MarkSelfCopy records the fingerprint of content the daemon is about to
// place on the clipboard itself. Observations of that fingerprint are
// suppressed — regardless of timing — until some other content appears on
// the clipboard, so every capture source sees the re-copy as our own no
// matter how late it polls.
func (c *Coordinator) MarkSelfCopy(fp string) {
	c.mu.Lock()
	c.selfFP = fp
	c.mu.Unlock()
}
