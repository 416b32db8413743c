package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestAllowedExt(t *testing.T) {
	assert.True(t, AllowedExt(".jpg"))
	assert.True(t, AllowedExt(".JPEG"))
	assert.True(t, AllowedExt("png"))
	assert.False(t, AllowedExt(".pdf"))
	assert.False(t, AllowedExt(""))
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/tmp/.hidden"))
	assert.True(t, IsHidden(".git"))
	assert.False(t, IsHidden("/tmp/visible.jpg"))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jpg"), "image-a")
	writeFile(t, filepath.Join(dir, "sub", "b.png"), "image-b")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not an image")
	writeFile(t, filepath.Join(dir, ".hidden", "c.jpg"), "image-c")

	files, stats, err := Discover(context.Background(), dir, true)
	require.NoError(t, err)

	require.Len(t, files, 2)
	names := []string{filepath.Base(files[0].Path), filepath.Base(files[1].Path)}
	assert.Contains(t, names, "a.jpg")
	assert.Contains(t, names, "b.png")
	assert.Equal(t, uint32(2), stats.Matched)
	for _, f := range files {
		assert.NotEmpty(t, f.HashHex)
		assert.Positive(t, f.Size)
	}
}

func TestDiscoverDeduplicatesByContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jpg"), "same-bytes")
	writeFile(t, filepath.Join(dir, "copy.jpg"), "same-bytes")

	files, stats, err := Discover(context.Background(), dir, true)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, uint32(1), stats.Deduplicated)
}

func TestDiscoverEmptyRoot(t *testing.T) {
	_, _, err := Discover(context.Background(), "  ", true)
	assert.Error(t, err)
}

func TestDiscoverKeepsHiddenWhenAsked(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".hidden", "c.jpg"), "image-c")

	files, _, err := Discover(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.bin")
	writeFile(t, path, "hello")

	sum, size, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)
	assert.Equal(t, int64(5), size)
}
