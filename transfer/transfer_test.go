package transfer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamCopyComputesMD5WhileCopying(t *testing.T) {
	var dst bytes.Buffer
	size, md5Hex, err := StreamCopy(&dst, strings.NewReader("a\n"), 4096, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)
	assert.Equal(t, "60b725f10c9c85c70d97880dfe8191b3", md5Hex)
	assert.Equal(t, "a\n", dst.String())
}

func TestLocalWriterCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "nested", "sub", "file.txt")

	f, err := LocalWriter(dest)
	require.NoError(t, err)
	_, err = f.WriteString("hello")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	contents, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(contents))
}

func TestRemovePartialDeletesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	RemovePartial(path)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRemovePartialIgnoresEmptyPath(t *testing.T) {
	assert.NotPanics(t, func() { RemovePartial("") })
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "upload", Upload.String())
	assert.Equal(t, "download", Download.String())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "failed", Failed.String())
}
