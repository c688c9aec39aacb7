package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndlib/scidataflow/manifest"
)

func withTempHome(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
}

func TestLoadUserConfigMissingIsZeroValue(t *testing.T) {
	withTempHome(t)
	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, UserConfig{}, cfg)
}

func TestSaveLoadUserConfigRoundTrip(t *testing.T) {
	withTempHome(t)
	cfg := UserConfig{Name: "A Researcher", Email: "a@example.org", Affiliation: "Example University"}
	require.NoError(t, SaveUserConfig(cfg))

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	path, err := UserConfigPath()
	require.NoError(t, err)
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())
}

func TestSetTokenPersists(t *testing.T) {
	withTempHome(t)
	require.NoError(t, SetToken(manifest.Zenodo, "tok-1"))
	require.NoError(t, SetToken(manifest.FigShare, "tok-2"))

	keys, err := LoadAuthKeys()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", keys[manifest.Zenodo])
	assert.Equal(t, "tok-2", keys[manifest.FigShare])
}
