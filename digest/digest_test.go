package digest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestKnownBytes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.tsv"), []byte("a\n"), 0644))

	svc := NewService(dir, time.Minute)
	result, err := svc.Digest("x.tsv")
	require.NoError(t, err)
	assert.Equal(t, "60b725f10c9c85c70d97880dfe8191b3", result.MD5)
	assert.Equal(t, int64(2), result.Size)
}

func TestDigestMissing(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir, time.Minute)
	_, err := svc.Digest("nope.txt")
	assert.ErrorIs(t, err, ErrMissing)
}

func TestDigestCacheMissAfterModification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.tsv")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0644))

	svc := NewService(dir, time.Minute)
	first, err := svc.Digest("x.tsv")
	require.NoError(t, err)

	// Sleep so mtime visibly changes on filesystems with coarse
	// resolution, then modify the file.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0644))

	second, err := svc.Digest("x.tsv")
	require.NoError(t, err)
	assert.NotEqual(t, first.MD5, second.MD5)
}

func TestCanonicalizeRejectsEscape(t *testing.T) {
	dir := t.TempDir()
	_, err := Canonicalize(dir, "../outside.txt")
	assert.ErrorIs(t, err, ErrOutsideProject)

	_, err = Canonicalize(dir, filepath.Join(dir, "..", "outside.txt"))
	assert.ErrorIs(t, err, ErrOutsideProject)
}

func TestCanonicalizeNormalizes(t *testing.T) {
	dir := t.TempDir()
	rel, err := Canonicalize(dir, "./data/../data/x.tsv")
	require.NoError(t, err)
	assert.Equal(t, "data/x.tsv", rel)
}

func TestStatReportsExistence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.tsv"), []byte("ab"), 0644))

	svc := NewService(dir, time.Minute)
	exists, size, _, err := svc.Stat("x.tsv")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(2), size)

	exists, _, _, err = svc.Stat("missing.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}
