package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStorePath(t *testing.T) {
	store := NewDocumentStore("/srv/downloads")

	path, err := store.Path("42")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/downloads", "42.pdf"), path)

	for _, id := range []string{"", "  ", "..", ".", "../42", `a\b`, "x/y"} {
		_, err := store.Path(id)
		assert.Error(t, err, "id %q", id)
	}
}

func TestDocumentStoreExists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "42.pdf"), []byte("%PDF-1.4"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "43.pdf"), 0o700))
	store := NewDocumentStore(dir)

	assert.True(t, store.Exists("42"))
	assert.False(t, store.Exists("43"))
	assert.False(t, store.Exists("44"))
	assert.False(t, store.Exists("../42"))
	assert.Equal(t, dir, store.BaseDir())
}

func TestDocumentStoreDefaultDir(t *testing.T) {
	assert.Equal(t, "./downloads", NewDocumentStore("").BaseDir())
}
