package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticURLEnsureProjectIsNoop(t *testing.T) {
	a := NewStaticURL()
	id, err := a.EnsureProject("some/dir")
	require.NoError(t, err)
	assert.Equal(t, "some/dir", id)
}

func TestStaticURLListFilesReportsSeeded(t *testing.T) {
	a := NewStaticURL()
	assert.Empty(t, mustList(t, a))

	seed := []RemoteFile{{Name: "a.csv", Size: 10, DownloadURL: "https://example.org/a.csv"}}
	a.SeedFiles(seed)
	assert.Equal(t, seed, mustList(t, a))
}

func mustList(t *testing.T, a *StaticURLAdapter) []RemoteFile {
	t.Helper()
	files, err := a.ListFiles("some/dir")
	require.NoError(t, err)
	return files
}

func TestStaticURLUploadUnsupported(t *testing.T) {
	a := NewStaticURL()
	_, err := a.Upload("some/dir", "/tmp/does-not-matter.csv", false)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestStaticURLDownloadURL(t *testing.T) {
	a := NewStaticURL()
	_, err := a.DownloadURL(RemoteFile{})
	assert.ErrorIs(t, err, ErrNotFound)

	url, err := a.DownloadURL(RemoteFile{DownloadURL: "https://example.org/a.csv"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/a.csv", url)
}

func TestStaticURLSupportsMD5(t *testing.T) {
	a := NewStaticURL()
	assert.False(t, a.SupportsMD5())
}
