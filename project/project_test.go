package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitThenDiscoverFromSubdir(t *testing.T) {
	root := t.TempDir()
	ctx, err := Init(root)
	require.NoError(t, err)
	assert.Equal(t, root, ctx.Root)

	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))

	found, err := Discover(sub)
	require.NoError(t, err)
	assert.Equal(t, root, found.Root)
}

func TestInitRejectsExisting(t *testing.T) {
	root := t.TempDir()
	_, err := Init(root)
	require.NoError(t, err)

	_, err = Init(root)
	assert.Error(t, err)
}

func TestDiscoverNoProject(t *testing.T) {
	dir := t.TempDir()
	_, err := Discover(dir)
	assert.ErrorIs(t, err, ErrNoProject)
}
