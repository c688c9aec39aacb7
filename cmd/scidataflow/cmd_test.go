package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// run executes the dispatcher with args against the current directory,
// capturing stdout, mirroring how cmd/bclient's tests exercise whole
// command functions rather than flag.Parse plumbing.
func run(t *testing.T, args ...string) string {
	t.Helper()
	rootCmd.SetArgs(args)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	old := os.Stdout
	os.Stdout = w

	err = rootCmd.Execute()

	w.Close()
	os.Stdout = old
	out, _ := io.ReadAll(r)

	require.NoError(t, err, "scidataflow %v: %s", args, out)
	return string(out)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

// TestScenario1InitAddStatus mirrors spec.md §8 scenario 1.
func TestScenario1InitAddStatus(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	run(t, "init")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "x.tsv"), []byte("a\n"), 0644))

	run(t, "add", "data/x.tsv")

	out := run(t, "status")
	require.Contains(t, out, "data/x.tsv")
	require.Contains(t, out, "60b725f10c9c85c70d97880dfe8191b3")
	require.Contains(t, out, "current")
}

// TestScenario2ModifyUpdate mirrors spec.md §8 scenario 2.
func TestScenario2ModifyUpdate(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	run(t, "init")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0755))
	path := filepath.Join(dir, "data", "x.tsv")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0644))
	run(t, "add", "data/x.tsv")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("b\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out := run(t, "status")
	require.Contains(t, out, "modified")

	run(t, "update", "data/x.tsv")
	out = run(t, "status")
	require.Contains(t, out, "current")
}

func TestStatusLongShowsSizeAndModTime(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	run(t, "init")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "x.tsv"), []byte("a\n"), 0644))
	run(t, "add", "data/x.tsv")

	out := run(t, "status", "--long")
	require.Contains(t, out, "data/x.tsv")
	require.Contains(t, out, "2") // size in bytes
}

func TestInitFailsWhenManifestAlreadyExists(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	run(t, "init")

	rootCmd.SetArgs([]string{"init"})
	err := rootCmd.Execute()
	require.Error(t, err)
}

func TestConfigRoundTrips(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)

	run(t, "config", "--name", "Ada Lovelace", "--email", "ada@example.org")
	out := run(t, "config")
	require.Contains(t, out, "Ada Lovelace")
	require.Contains(t, out, "ada@example.org")
}
