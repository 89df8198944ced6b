package entry

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContentPredicates(t *testing.T) {
	text := &Entry{ID: "a", Content: Text{Value: "hello"}, Timestamp: time.Now()}
	img := &Entry{ID: "b", Content: Image{Ref: "deadbeef"}, Timestamp: time.Now()}

	assert.True(t, text.IsText())
	assert.False(t, text.IsImage())
	assert.Equal(t, "hello", text.Text())
	assert.Empty(t, text.BlobRef())

	assert.True(t, img.IsImage())
	assert.False(t, img.IsText())
	assert.Equal(t, "deadbeef", img.BlobRef())
	assert.Empty(t, img.Text())
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		n       int
		want    string
	}{
		{"short text", Text{Value: "hi"}, 100, "hi"},
		{"exact length", Text{Value: "abcde"}, 5, "abcde"},
		{"truncated", Text{Value: strings.Repeat("x", 120)}, 100, strings.Repeat("x", 100) + "…"},
		{"multibyte not split", Text{Value: strings.Repeat("é", 10)}, 4, "éééé…"},
		{"image", Image{Ref: "ref"}, 100, ImageLabel},
		{"nil content", nil, 100, "(empty)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Content: tt.content}
			assert.Equal(t, tt.want, e.Preview(tt.n))
		})
	}
}

func TestPreviewDefaultLength(t *testing.T) {
	e := &Entry{Content: Text{Value: strings.Repeat("a", 150)}}
	got := e.Preview(0)
	assert.Equal(t, strings.Repeat("a", DefaultPreviewLength)+"…", got)
}

func TestFingerprint(t *testing.T) {
	a := FingerprintText("hello")
	b := FingerprintText("hello")
	c := FingerprintText("world")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // sha256 hex
	assert.Empty(t, FingerprintText(""))

	assert.Equal(t, a, Fingerprint(Text{Value: "hello"}))
	assert.Equal(t, "blob-1", Fingerprint(Image{Ref: "blob-1"}))
	assert.Empty(t, Fingerprint(nil))
}
