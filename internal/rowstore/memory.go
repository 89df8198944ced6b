// Package rowstore provides the durable row storage backends for the
// history store: a SQLite store for normal runs and an in-memory store for
// tests and --ephemeral mode.
package rowstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dagimg-dot/Glide/internal/entry"
)

// Memory is a mutex-guarded in-process row store.
type Memory struct {
	mu      sync.RWMutex
	seq     int64
	entries map[string]*entry.Entry
}

// NewMemory returns an empty in-memory row store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*entry.Entry)}
}

func (m *Memory) Insert(_ context.Context, e *entry.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	e.Seq = m.seq
	cp := *e
	m.entries[e.ID] = &cp
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*entry.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *Memory) FindByText(_ context.Context, text string) (*entry.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if t, ok := e.Content.(entry.Text); ok && t.Value == text {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) UpdateTimestamp(_ context.Context, id string, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		e.Timestamp = ts
	}
	return nil
}

func (m *Memory) SetPinned(_ context.Context, id string, pinned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		e.Pinned = pinned
	}
	return nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

func (m *Memory) CountByBlobRef(_ context.Context, ref string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.entries {
		if img, ok := e.Content.(entry.Image); ok && img.Ref == ref {
			n++
		}
	}
	return n, nil
}

func (m *Memory) OldestUnpinned(_ context.Context, limit int) ([]*entry.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*entry.Entry
	for _, e := range m.entries {
		if e.Pinned {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Seq < out[j].Seq
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *Memory) DeleteAllUnpinned(_ context.Context) ([]*entry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []*entry.Entry
	for id, e := range m.entries {
		if e.Pinned {
			continue
		}
		cp := *e
		removed = append(removed, &cp)
		delete(m.entries, id)
	}
	return removed, nil
}

func (m *Memory) All(_ context.Context) ([]*entry.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*entry.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Seq > out[j].Seq
	})
	return out, nil
}
