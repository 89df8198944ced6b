// Package entry defines the clipboard history entry model: a stable-ID
// record whose content is exactly one of text or an image blob reference.
package entry

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultPreviewLength is the number of characters shown before truncation.
const DefaultPreviewLength = 100

// ImageLabel is the fixed preview label for image entries. It doubles as the
// placeholder a re-copy of an image places on the clipboard as text, so the
// capture path can recognise and ignore it.
const ImageLabel = "[Image]"

// Content is the entry payload. Exactly two implementations exist, Text and
// Image; the unexported marker method keeps the set closed.
type Content interface {
	isContent()
}

// Text is plain-text clipboard content.
type Text struct {
	Value string
}

// Image is an image payload stored out-of-band; Ref is the blob sink
// reference returned when the bytes were persisted.
type Image struct {
	Ref string
}

func (Text) isContent()  {}
func (Image) isContent() {}

// Entry is one history record. ID and Seq never change; Timestamp moves
// forward when identical text is re-copied, Pinned is toggled by the user.
type Entry struct {
	ID        string
	Content   Content
	Timestamp time.Time
	Pinned    bool
	SourceApp string

	// Seq is a monotonic insertion counter, used to break eviction ties
	// between entries whose timestamps are equal.
	Seq int64
}

// IsText reports whether the entry holds text content.
func (e *Entry) IsText() bool {
	_, ok := e.Content.(Text)
	return ok
}

// IsImage reports whether the entry holds an image reference.
func (e *Entry) IsImage() bool {
	_, ok := e.Content.(Image)
	return ok
}

// Text returns the text payload, or "" for non-text entries.
func (e *Entry) Text() string {
	if t, ok := e.Content.(Text); ok {
		return t.Value
	}
	return ""
}

// BlobRef returns the image blob reference, or "" for non-image entries.
func (e *Entry) BlobRef() string {
	if img, ok := e.Content.(Image); ok {
		return img.Ref
	}
	return ""
}

// Preview returns a short display form of the entry: the first n runes of
// text (with a trailing ellipsis when truncated), the image label for
// images, and "(empty)" for an entry whose content was never set — that
// last branch should be unreachable but is kept so a half-constructed
// entry renders harmlessly.
func (e *Entry) Preview(n int) string {
	if n <= 0 {
		n = DefaultPreviewLength
	}
	switch c := e.Content.(type) {
	case Text:
		r := []rune(c.Value)
		if len(r) <= n {
			return c.Value
		}
		return string(r[:n]) + "…"
	case Image:
		return ImageLabel
	default:
		return "(empty)"
	}
}

// Fingerprint returns the identity used by the capture gate to compare two
// clipboard observations: sha256 of the text, or the blob ref itself for
// images. Empty content fingerprints to "".
func Fingerprint(c Content) string {
	switch v := c.(type) {
	case Text:
		return FingerprintText(v.Value)
	case Image:
		return v.Ref
	default:
		return ""
	}
}

// FingerprintText hashes a text payload for duplicate detection.
func FingerprintText(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// FingerprintBytes hashes a binary payload. The result matches the
// content-addressed blob reference the sink assigns to the same bytes.
func FingerprintBytes(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
