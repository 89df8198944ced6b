// Package history implements the canonical clipboard history: a bounded,
// ordered, deduplicating collection written through to a row store and a
// blob sink, with a live ordered view for subscribers.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dagimg-dot/Glide/internal/blob"
	"github.com/dagimg-dot/Glide/internal/entry"
)

// DefaultMaxItems is the capacity bound on unpinned entries.
const DefaultMaxItems = 50

// ErrNotFound is returned by user-initiated operations that name an entry
// the store does not hold.
var ErrNotFound = errors.New("entry not found")

// InsertResult describes how an insert request was resolved.
type InsertResult int

const (
	// ResultFailed means persistence broke; it always travels with a
	// non-nil error and never means the content was invalid.
	ResultFailed InsertResult = iota
	// ResultRejected means the content failed validation (blank text).
	// Not an error: the capture path simply drops the event.
	ResultRejected
	// ResultInserted means a new entry was created.
	ResultInserted
	// ResultBumped means an identical text entry already existed and had
	// its timestamp refreshed instead.
	ResultBumped
)

// Config carries the static store limits.
type Config struct {
	MaxItems      int
	PreviewLength int
}

// Store is the history store. Every mutating operation runs under one
// mutex, so mutations are linearizable and each published snapshot
// reflects exactly one committed state.
type Store struct {
	rows RowStore
	sink blob.Sink
	cfg  Config
	now  func() time.Time

	mu      sync.Mutex
	entropy *rand.Rand
	nextSub int64
	subs    map[int64]*Subscription
}

// New returns a store over the given row store and blob sink.
func New(rows RowStore, sink blob.Sink, cfg Config) *Store {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = entry.DefaultPreviewLength
	}
	return &Store{
		rows:    rows,
		sink:    sink,
		cfg:     cfg,
		now:     time.Now,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		subs:    make(map[int64]*Subscription),
	}
}

// newIDLocked mints a ULID. Must be called with s.mu held: the entropy
// source is not safe for concurrent use.
func (s *Store) newIDLocked() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

// InsertText records a text observation. Blank text is rejected. Identical
// existing text is bumped to most-recent instead of duplicated; otherwise
// capacity is enforced and a new entry created.
func (s *Store) InsertText(ctx context.Context, text, sourceApp string) (InsertResult, error) {
	if strings.TrimSpace(text) == "" {
		return ResultRejected, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.rows.FindByText(ctx, text)
	if err != nil {
		return ResultFailed, fmt.Errorf("find by text: %w", err)
	}
	if existing != nil {
		if err := s.rows.UpdateTimestamp(ctx, existing.ID, s.now()); err != nil {
			return ResultFailed, fmt.Errorf("bump timestamp: %w", err)
		}
		s.publishLocked(ctx)
		return ResultBumped, nil
	}

	s.evictLocked(ctx)

	e := &entry.Entry{
		ID:        s.newIDLocked(),
		Content:   entry.Text{Value: text},
		Timestamp: s.now(),
		SourceApp: sourceApp,
	}
	if err := s.rows.Insert(ctx, e); err != nil {
		return ResultFailed, fmt.Errorf("insert text row: %w", err)
	}
	s.publishLocked(ctx)
	return ResultInserted, nil
}

// InsertImage records an image observation. Images are never deduplicated
// by content here; the capture gate already suppressed the duplicate
// observation of a single copy event. The blob is persisted first and
// released again if the row insert fails (unless an existing row shares
// it), so a failure leaves no orphan row and no leaked blob.
func (s *Store) InsertImage(ctx context.Context, data []byte, sourceApp string) (InsertResult, error) {
	if len(data) == 0 {
		return ResultRejected, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(ctx)

	ref, err := s.sink.Store(data)
	if err != nil {
		return ResultFailed, fmt.Errorf("store blob: %w", err)
	}

	e := &entry.Entry{
		ID:        s.newIDLocked(),
		Content:   entry.Image{Ref: ref},
		Timestamp: s.now(),
		SourceApp: sourceApp,
	}
	if err := s.rows.Insert(ctx, e); err != nil {
		s.releaseBlobLocked(ctx, e)
		return ResultFailed, fmt.Errorf("insert image row: %w", err)
	}
	s.publishLocked(ctx)
	return ResultInserted, nil
}

// TogglePin flips the pinned flag of an entry.
func (s *Store) TogglePin(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.rows.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}
	if e == nil {
		return ErrNotFound
	}
	if err := s.rows.SetPinned(ctx, id, !e.Pinned); err != nil {
		return fmt.Errorf("set pinned: %w", err)
	}
	s.publishLocked(ctx)
	return nil
}

// Delete removes one entry and, if it held an image no other entry still
// references, releases its blob. Deleting an id the store does not hold is
// a no-op, so concurrent duplicate deletes release the blob exactly once.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.rows.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}
	if e == nil {
		return nil
	}
	// Row first, blob second: if the row delete fails the blob is still
	// referenced and must stay.
	if err := s.rows.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete row: %w", err)
	}
	s.releaseBlobLocked(ctx, e)
	s.publishLocked(ctx)
	return nil
}

// ClearUnpinned removes every unpinned entry and releases their blobs.
// Pinned entries are untouched.
func (s *Store) ClearUnpinned(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.rows.DeleteAllUnpinned(ctx)
	if err != nil {
		return fmt.Errorf("delete unpinned: %w", err)
	}
	for _, e := range removed {
		s.releaseBlobLocked(ctx, e)
	}
	s.publishLocked(ctx)
	return nil
}

// Get returns one entry, or nil when the id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows.Get(ctx, id)
}

// List returns the current display ordering.
func (s *Store) List(ctx context.Context) ([]*entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows.All(ctx)
}

// PreviewLength returns the configured preview truncation length.
func (s *Store) PreviewLength() int { return s.cfg.PreviewLength }

// evictLocked enforces the capacity bound before a new entry is inserted.
// The count includes pinned entries but victims are selected only from the
// unpinned oldest, so a store dominated by pinned entries may transiently
// exceed the cap. Individual failures are logged and the batch continues:
// a stuck eviction must never block new captures.
func (s *Store) evictLocked(ctx context.Context) {
	count, err := s.rows.Count(ctx)
	if err != nil {
		slog.Warn("eviction count failed", "err", err)
		return
	}
	if count < s.cfg.MaxItems {
		return
	}
	toEvict := count - s.cfg.MaxItems + 1

	victims, err := s.rows.OldestUnpinned(ctx, toEvict)
	if err != nil {
		slog.Warn("eviction candidate query failed", "err", err)
		return
	}
	for _, v := range victims {
		if err := s.rows.Delete(ctx, v.ID); err != nil {
			slog.Warn("evict row failed", "id", v.ID, "err", err)
			continue
		}
		s.releaseBlobLocked(ctx, v)
		slog.Debug("evicted entry", "id", v.ID, "preview", v.Preview(s.cfg.PreviewLength))
	}
}

// releaseBlobLocked releases an image entry's blob once no row references
// it anymore. Blobs are content-addressed, so rows holding identical image
// bytes share one ref; the blob stays until its last row is gone. When the
// reference count cannot be determined the blob is kept: a leaked file is
// recoverable, a released blob under a live row is not. Release errors are
// logged rather than failed on since the row is already gone.
func (s *Store) releaseBlobLocked(ctx context.Context, e *entry.Entry) {
	ref := e.BlobRef()
	if ref == "" {
		return
	}
	remaining, err := s.rows.CountByBlobRef(ctx, ref)
	if err != nil {
		slog.Warn("blob reference count failed, keeping blob", "ref", ref, "err", err)
		return
	}
	if remaining > 0 {
		return
	}
	if err := s.sink.Release(ref); err != nil {
		slog.Warn("blob release failed", "ref", ref, "err", err)
	}
}
