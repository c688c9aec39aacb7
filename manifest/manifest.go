package manifest

import (
	"errors"
	"path"
	"strings"
)

// Sentinel errors for manifest-level invariant violations (spec.md §3).
var (
	ErrAlreadyInManifest   = errors.New("manifest: path already tracked")
	ErrNotInManifest       = errors.New("manifest: path not tracked")
	ErrOverlappingBinding  = errors.New("manifest: directory overlaps an existing binding")
	ErrSubpathInFlatRemote = errors.New("manifest: directory has tracked files in subdirectories, which a flat remote cannot represent")
)

// BindingFor returns the RemoteBinding that governs relPath, if any, by
// walking relPath's ancestor directories looking for a binding (spec.md
// §3 invariant 3: "a tracked DataFile whose parent directory (or
// ancestor up to root) matches a RemoteBinding.directory").
func (dc *DataCollection) BindingFor(relPath string) (*RemoteBinding, bool) {
	dir := path.Dir(relPath)
	for {
		if b, ok := dc.Remotes[dir]; ok {
			return b, true
		}
		if dir == "." || dir == "/" {
			return nil, false
		}
		dir = path.Dir(dir)
	}
}

// overlaps reports whether a and b are the same directory, or one is an
// ancestor of the other (spec.md §3 invariant 2). The project root (".")
// is an ancestor of every directory, including itself.
func overlaps(a, b string) bool {
	if a == b {
		return true
	}
	if a == "." || b == "." {
		return true
	}
	return strings.HasPrefix(a+"/", b+"/") || strings.HasPrefix(b+"/", a+"/")
}

// CheckOverlap returns ErrOverlappingBinding if dir overlaps any
// existing binding's directory.
func (dc *DataCollection) CheckOverlap(dir string) error {
	for existing := range dc.Remotes {
		if overlaps(dir, existing) {
			return ErrOverlappingBinding
		}
	}
	return nil
}

// CheckFlatRemote returns ErrSubpathInFlatRemote if any tracked file
// under dir has a subpath deeper than dir itself (spec.md §4.E "Edge
// cases" — the one semantic check callers must perform at link time).
func (dc *DataCollection) CheckFlatRemote(dir string) error {
	prefix := ""
	if dir != "." && dir != "" {
		prefix = dir + "/"
	}
	for p := range dc.Files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if strings.Contains(rest, "/") {
			return ErrSubpathInFlatRemote
		}
	}
	return nil
}

// AddFile inserts a new tracked/untracked entry. Returns
// ErrAlreadyInManifest if overwrite is false and the path is already
// present.
func (dc *DataCollection) AddFile(f DataFile, overwrite bool) error {
	if _, exists := dc.Files[f.Path]; exists && !overwrite {
		return ErrAlreadyInManifest
	}
	dc.Files[f.Path] = &f
	return nil
}

// UpdateFile rewrites an existing entry's digest metadata
// unconditionally. Returns ErrNotInManifest if the path is unknown.
func (dc *DataCollection) UpdateFile(f DataFile) error {
	if _, exists := dc.Files[f.Path]; !exists {
		return ErrNotInManifest
	}
	dc.Files[f.Path] = &f
	return nil
}

// RemoveFile deletes a manifest entry. It never touches the filesystem.
func (dc *DataCollection) RemoveFile(relPath string) error {
	if _, exists := dc.Files[relPath]; !exists {
		return ErrNotInManifest
	}
	delete(dc.Files, relPath)
	return nil
}

// SetTracked toggles the tracked flag for relPath.
func (dc *DataCollection) SetTracked(relPath string, tracked bool) error {
	f, exists := dc.Files[relPath]
	if !exists {
		return ErrNotInManifest
	}
	f.Tracked = tracked
	return nil
}

// AddBinding installs a new RemoteBinding after the caller has already
// validated overlap and flat-remote constraints (reconcile.Link does
// this). An existing entry for the same directory is replaced, which is
// how reconcile.Link re-binds a directory (spec.md §3 "Lifecycles").
func (dc *DataCollection) AddBinding(b RemoteBinding) {
	dc.Remotes[b.Directory] = &b
}

// SortedPaths returns tracked-and-untracked manifest paths in
// lexicographic order, for deterministic batch processing and reporting
// (spec.md §4.E "Ordering & tie-breaks").
func (dc *DataCollection) SortedPaths() []string {
	return sortedKeys(dc.Files)
}

// SortedDirectories returns binding directories in lexicographic order.
func (dc *DataCollection) SortedDirectories() []string {
	return sortedKeys(dc.Remotes)
}
