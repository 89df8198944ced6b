package history

import (
	"context"
	"log/slog"

	"github.com/dagimg-dot/Glide/internal/entry"
)

// Subscription is a live view of the store's ordering. The current
// snapshot is delivered on subscribe, then the full ordering again after
// every mutation, in commit order. Delivery is latest-wins: a slow
// consumer skips intermediate states but always ends on the current one.
// Callers must Close the subscription when done.
type Subscription struct {
	id    int64
	store *Store
	ch    chan []*entry.Entry
}

// Updates returns the snapshot channel. It is closed by Close.
func (sub *Subscription) Updates() <-chan []*entry.Entry {
	return sub.ch
}

// Close unregisters the subscription and closes its channel.
func (sub *Subscription) Close() {
	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub.id]; !ok {
		return
	}
	delete(s.subs, sub.id)
	close(sub.ch)
}

// Observe subscribes to the store's ordering. The current state is queued
// for delivery immediately.
func (s *Store) Observe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	sub := &Subscription{
		id:    s.nextSub,
		store: s,
		ch:    make(chan []*entry.Entry, 1),
	}
	s.subs[sub.id] = sub

	snap, err := s.rows.All(context.Background())
	if err != nil {
		slog.Warn("observe initial snapshot failed", "err", err)
		snap = nil
	}
	sub.ch <- snap
	return sub
}

// publishLocked pushes the current ordering to every subscriber. Must be
// called with s.mu held, which is what keeps delivery in commit order.
func (s *Store) publishLocked(ctx context.Context) {
	if len(s.subs) == 0 {
		return
	}
	snap, err := s.rows.All(ctx)
	if err != nil {
		slog.Warn("publish snapshot failed", "err", err)
		return
	}
	for _, sub := range s.subs {
		select {
		case sub.ch <- snap:
		default:
			// Buffer full: replace the pending snapshot with the
			// newer one instead of blocking the mutation path.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- snap:
			default:
			}
		}
	}
}
