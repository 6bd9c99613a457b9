package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveStreamSanitizesAndPrefixes(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.SaveStream("../evil path/ph oto!.jpg", strings.NewReader("image-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, "uploads/"))
	assert.NotContains(t, rel, "..")
	assert.NotContains(t, rel, " ")
	assert.NotContains(t, rel, "!")

	file, err := store.Open(rel)
	require.NoError(t, err)
	defer file.Close()
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))
}

func TestSaveStreamUniqueNames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	first, err := store.SaveStream("photo.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := store.SaveStream("photo.jpg", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDeleteMissingFileIsNoop(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete("uploads/never-existed.jpg"))
}
