package history

import (
	"context"
	"time"

	"github.com/dagimg-dot/Glide/internal/entry"
)

// RowStore is the durable ordered storage the history store writes through
// to. Each call is atomic at the row level; serialization across calls is
// the history store's job, not the row store's.
//
// Lookup methods return (nil, nil) when no row matches.
type RowStore interface {
	// Insert persists a new row and assigns e.Seq from the store's
	// monotonic insertion counter.
	Insert(ctx context.Context, e *entry.Entry) error
	Get(ctx context.Context, id string) (*entry.Entry, error)
	FindByText(ctx context.Context, text string) (*entry.Entry, error)
	UpdateTimestamp(ctx context.Context, id string, ts time.Time) error
	SetPinned(ctx context.Context, id string, pinned bool) error
	Count(ctx context.Context) (int, error)
	// CountByBlobRef reports how many image rows still reference the
	// given blob. Identical image bytes share one content-addressed
	// blob, so a blob may only be released once this reaches zero.
	CountByBlobRef(ctx context.Context, ref string) (int, error)
	// OldestUnpinned returns up to limit unpinned rows, oldest first
	// (timestamp ASC, then insertion order).
	OldestUnpinned(ctx context.Context, limit int) ([]*entry.Entry, error)
	Delete(ctx context.Context, id string) error
	// DeleteAllUnpinned removes every unpinned row and returns the
	// removed entries so their blobs can be released.
	DeleteAllUnpinned(ctx context.Context) ([]*entry.Entry, error)
	// All returns every row in display order: pinned first, then most
	// recent first.
	All(ctx context.Context) ([]*entry.Entry, error)
}
