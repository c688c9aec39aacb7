// Package project discovers the SciDataFlow project root and loads its
// manifest into a ProjectContext, the object the dispatcher threads
// through every command (spec.md §3, §4.F).
package project

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ndlib/scidataflow/manifest"
)

// ErrNoProject means no manifest file was found in the current
// directory or any ancestor.
var ErrNoProject = errors.New("project: not inside a scidataflow project (no data_manifest.yml found)")

// Context is the discovered project: its absolute root and the manifest
// loaded from it.
type Context struct {
	Root       string
	Collection *manifest.DataCollection
}

// ManifestPath returns the absolute path to this project's manifest
// file.
func (c *Context) ManifestPath() string {
	return filepath.Join(c.Root, manifest.Filename)
}

// Save persists the context's in-memory DataCollection back to disk.
// The dispatcher calls this once, after a mutating command's core
// operation returns success (spec.md §4.F).
func (c *Context) Save() error {
	return manifest.Save(c.ManifestPath(), c.Collection)
}

// Discover walks upward from start (a directory), looking for a
// manifest file, the way bendo's cmd/bclient takes a -root flag except
// here the root is found rather than specified (spec.md §4.F "Discovers
// project root by walking parents for the manifest").
func Discover(start string) (*Context, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}
	dir := abs
	for {
		candidate := filepath.Join(dir, manifest.Filename)
		if manifest.Exists(candidate) {
			dc, err := manifest.Load(candidate)
			if err != nil {
				return nil, err
			}
			return &Context{Root: dir, Collection: dc}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNoProject
		}
		dir = parent
	}
}

// Init creates a new, empty manifest at start and returns the resulting
// Context. It fails if a manifest is already present in start (not any
// ancestor) — spec.md §6 "init ... non-zero if already exists".
func Init(start string) (*Context, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(abs, manifest.Filename)
	if manifest.Exists(path) {
		return nil, errors.New("project: manifest already exists")
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, err
	}
	dc := manifest.New()
	if err := manifest.Save(path, dc); err != nil {
		return nil, err
	}
	return &Context{Root: abs, Collection: dc}, nil
}
