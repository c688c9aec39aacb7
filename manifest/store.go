package manifest

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Filename is the manifest's well-known name at the project root.
const Filename = "data_manifest.yml"

// ErrNoManifest means the manifest file does not exist at the given path.
var ErrNoManifest = errors.New("manifest: no manifest file found")

// Load reads and parses the manifest at path.
func Load(path string) (*DataCollection, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoManifest
	} else if err != nil {
		return nil, err
	}
	var w wireFormat
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	dc := New()
	dc.fromWire(w)
	return dc, nil
}

// Save serializes dc and atomically replaces the manifest at path.
//
// This adapts store/file_store.go's Create/moveCloser pattern from
// bendo: write to a scratch file in the same directory, fsync it, then
// rename over the live file. The rename is what bendo's FileSystem
// store relies on to guarantee a reader never observes a partially
// written object, and it gives us the same guarantee for the manifest
// (spec.md §4.B: "No partial writes are ever observable").
func Save(path string, dc *DataCollection) error {
	data, err := yaml.Marshal(dc.toWire())
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".data_manifest-*.yml.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	// On any early return, make sure the scratch file doesn't linger.
	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	succeeded = true
	return nil
}

// Exists reports whether a manifest is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
