package rowstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dagimg-dot/Glide/internal/entry"
)

const (
	kindText  = "text"
	kindImage = "image"
)

// SQLite is the durable row store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the history database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS entries (
  seq        INTEGER PRIMARY KEY AUTOINCREMENT,
  id         TEXT NOT NULL UNIQUE,
  kind       TEXT NOT NULL CHECK (kind IN ('text','image')),
  text       TEXT,
  blob_ref   TEXT,
  ts         INTEGER NOT NULL,
  pinned     INTEGER NOT NULL DEFAULT 0,
  source_app TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entries_order  ON entries(pinned DESC, ts DESC, seq DESC);
CREATE INDEX IF NOT EXISTS idx_entries_oldest ON entries(pinned, ts ASC, seq ASC);
CREATE INDEX IF NOT EXISTS idx_entries_text   ON entries(kind, text);
`)
	return err
}

func (s *SQLite) Insert(ctx context.Context, e *entry.Entry) error {
	kind := kindText
	var text, blobRef sql.NullString
	switch c := e.Content.(type) {
	case entry.Text:
		text = sql.NullString{String: c.Value, Valid: true}
	case entry.Image:
		kind = kindImage
		blobRef = sql.NullString{String: c.Ref, Valid: true}
	default:
		return fmt.Errorf("entry %s has no content", e.ID)
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO entries(id, kind, text, blob_ref, ts, pinned, source_app)
VALUES(?, ?, ?, ?, ?, ?, ?)
`, e.ID, kind, text, blobRef, e.Timestamp.UnixMicro(), boolToInt(e.Pinned), e.SourceApp)
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.Seq = seq
	return nil
}

const selectCols = `seq, id, kind, text, blob_ref, ts, pinned, source_app`

func (s *SQLite) Get(ctx context.Context, id string) (*entry.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectCols+` FROM entries WHERE id = ?`, id)
	return scanOne(row)
}

func (s *SQLite) FindByText(ctx context.Context, text string) (*entry.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectCols+` FROM entries WHERE kind = ? AND text = ? LIMIT 1`,
		kindText, text)
	return scanOne(row)
}

func (s *SQLite) UpdateTimestamp(ctx context.Context, id string, ts time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE entries SET ts = ? WHERE id = ?`, ts.UnixMicro(), id)
	return err
}

func (s *SQLite) SetPinned(ctx context.Context, id string, pinned bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE entries SET pinned = ? WHERE id = ?`, boolToInt(pinned), id)
	return err
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM entries`).Scan(&n)
	return n, err
}

func (s *SQLite) CountByBlobRef(ctx context.Context, ref string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM entries WHERE kind = ? AND blob_ref = ?`,
		kindImage, ref).Scan(&n)
	return n, err
}

func (s *SQLite) OldestUnpinned(ctx context.Context, limit int) ([]*entry.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+selectCols+` FROM entries
WHERE pinned = 0
ORDER BY ts ASC, seq ASC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanAll(rows)
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	return err
}

func (s *SQLite) DeleteAllUnpinned(ctx context.Context) ([]*entry.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectCols+` FROM entries WHERE pinned = 0`)
	if err != nil {
		return nil, err
	}
	removed, err := scanAll(rows)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE pinned = 0`); err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *SQLite) All(ctx context.Context) ([]*entry.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+selectCols+` FROM entries
ORDER BY pinned DESC, ts DESC, seq DESC`)
	if err != nil {
		return nil, err
	}
	return scanAll(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (*entry.Entry, error) {
	var (
		e       entry.Entry
		kind    string
		text    sql.NullString
		blobRef sql.NullString
		ts      int64
		pinned  int
	)
	if err := sc.Scan(&e.Seq, &e.ID, &kind, &text, &blobRef, &ts, &pinned, &e.SourceApp); err != nil {
		return nil, err
	}
	switch kind {
	case kindText:
		e.Content = entry.Text{Value: text.String}
	case kindImage:
		e.Content = entry.Image{Ref: blobRef.String}
	}
	e.Timestamp = time.UnixMicro(ts)
	e.Pinned = pinned == 1
	return &e, nil
}

func scanOne(row *sql.Row) (*entry.Entry, error) {
	e, err := scan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func scanAll(rows *sql.Rows) ([]*entry.Entry, error) {
	defer rows.Close()
	var out []*entry.Entry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
