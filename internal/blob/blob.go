// Package blob persists image payloads outside the row store. References
// are content-addressed (sha256 hex), so storing the same bytes twice
// yields the same reference and release is naturally idempotent.
package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sink stores raw payloads, hands them back for re-copy, and releases
// them when their owning entry is destroyed. Release of an unknown or
// already-released reference is a no-op: cleanup paths may retry.
type Sink interface {
	Store(data []byte) (ref string, err error)
	Open(ref string) ([]byte, error)
	Release(ref string) error
}

// Dir is a Sink backed by a flat directory of content-addressed files.
type Dir struct {
	root string
}

// NewDir creates the blob directory if needed and returns a Sink over it.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Dir{root: root}, nil
}

// Store writes data under its sha256 hex name and returns that name.
// Writing bytes that are already present is a cheap overwrite with
// identical content.
func (d *Dir) Store(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty blob")
	}
	sum := sha256.Sum256(data)
	ref := hex.EncodeToString(sum[:])

	tmp, err := os.CreateTemp(d.root, ".blob-*")
	if err != nil {
		return "", fmt.Errorf("blob temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("blob write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("blob close: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.path(ref)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("blob rename: %w", err)
	}
	return ref, nil
}

// Release removes the file for ref. A missing file is not an error.
func (d *Dir) Release(ref string) error {
	if ref == "" {
		return nil
	}
	if err := os.Remove(d.path(ref)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blob release: %w", err)
	}
	return nil
}

// Open returns the stored bytes for ref.
func (d *Dir) Open(ref string) ([]byte, error) {
	b, err := os.ReadFile(d.path(ref))
	if err != nil {
		return nil, fmt.Errorf("blob open: %w", err)
	}
	return b, nil
}

func (d *Dir) path(ref string) string {
	// filepath.Base guards against refs containing path separators.
	return filepath.Join(d.root, filepath.Base(ref))
}
