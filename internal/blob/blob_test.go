package blob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirStoreAndOpen(t *testing.T) {
	d, err := NewDir(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)

	ref, err := d.Store([]byte("png bytes"))
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	got, err := d.Open(ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), got)
}

func TestDirStoreIsContentAddressed(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	a, err := d.Store([]byte("same"))
	require.NoError(t, err)
	b, err := d.Store([]byte("same"))
	require.NoError(t, err)
	c, err := d.Store([]byte("different"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestDirRejectsEmpty(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	_, err = d.Store(nil)
	assert.Error(t, err)
}

func TestDirReleaseIdempotent(t *testing.T) {
	root := t.TempDir()
	d, err := NewDir(root)
	require.NoError(t, err)

	ref, err := d.Store([]byte("bytes"))
	require.NoError(t, err)

	require.NoError(t, d.Release(ref))
	_, statErr := os.Stat(filepath.Join(root, ref))
	assert.True(t, os.IsNotExist(statErr))

	// Second release of the same ref must not error.
	assert.NoError(t, d.Release(ref))
	assert.NoError(t, d.Release("never-stored"))
	assert.NoError(t, d.Release(""))
}

func TestMemorySinkCountsReleases(t *testing.T) {
	m := NewMemory()

	ref, err := m.Store([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Release(ref))
	require.NoError(t, m.Release(ref))
	assert.Equal(t, 1, m.Releases(ref))
	assert.Equal(t, 0, m.Len())
}
