// Package reconcile computes per-file status against both the local
// filesystem and bound remotes, and implements every mutating
// operation the CLI exposes (spec.md §4.E): add, update, rm, track,
// link, pull, push, get, bulk.
//
// This generalizes fileutil/fileutil.go's ListData (a local FileList
// diffed against a remote FileList fetched from one bendo server) into
// a three-way join across the manifest, the local disk, and whichever
// of {FigShare, Zenodo, StaticURL} a directory is bound to.
package reconcile

import (
	"path"
	"path/filepath"
	"sort"

	"github.com/ndlib/scidataflow/digest"
	"github.com/ndlib/scidataflow/internal/concurrency"
	"github.com/ndlib/scidataflow/manifest"
	"github.com/ndlib/scidataflow/remote"
)

// LocalState is the Local axis of a FileStatus (spec.md §4.E).
type LocalState string

const (
	LocalCurrent   LocalState = "current"
	LocalModified  LocalState = "modified"
	LocalDeleted   LocalState = "deleted"
	LocalUntracked LocalState = "untracked"
)

// RemoteState is the Remote axis of a FileStatus.
type RemoteState string

const (
	RemoteNotQueried   RemoteState = "unknown"
	RemoteNotOnRemote  RemoteState = "not_on_remote"
	RemoteIdentical    RemoteState = "identical"
	RemoteDifferent RemoteState = "different"
)

// FileStatus is one row of a status report.
type FileStatus struct {
	Path     string
	Local    LocalState
	Remote   RemoteState
	Tracked  bool
	MD5      string // current local digest, empty if Deleted
	PriorMD5 string // manifest's recorded digest, for the Modified "a -> b" display
	Size     int64
	ModTime  string
}

// remoteInventory caches one binding's ListFiles result for the
// duration of a single Status call, so a project with many tracked
// files under the same binding only queries the remote once.
type remoteInventory struct {
	byName map[string]remote.RemoteFile
}

// Status computes a FileStatus for every manifest entry, in
// lexicographic path order (spec.md §4.E "Ordering & tie-breaks").
// Remote inventories are queried only when withRemotes is true.
func (r *Reconciler) Status(withRemotes bool) ([]FileStatus, error) {
	inventories := make(map[string]*remoteInventory)

	var rows []FileStatus
	for _, p := range r.Ctx.Collection.SortedPaths() {
		f := r.Ctx.Collection.Files[p]
		row := FileStatus{Path: p, Tracked: f.Tracked, PriorMD5: f.MD5, Remote: RemoteNotQueried}

		exists, _, mtime, err := r.Digests.Stat(p)
		if err != nil {
			return nil, err
		}
		if !exists {
			row.Local = LocalDeleted
		} else {
			result, err := r.Digests.Digest(p)
			if err != nil {
				return nil, err
			}
			row.MD5 = result.MD5
			row.Size = result.Size
			row.ModTime = mtime.Format("2006-01-02T15:04:05")
			if result.MD5 == f.MD5 {
				row.Local = LocalCurrent
			} else {
				row.Local = LocalModified
			}
		}

		if withRemotes {
			if err := r.resolveRemoteState(&row, f, inventories); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// resolveRemoteState fills in row.Remote by consulting the binding
// covering f.Path, reusing a per-binding cached inventory.
func (r *Reconciler) resolveRemoteState(row *FileStatus, f *manifest.DataFile, inventories map[string]*remoteInventory) error {
	binding, ok := r.Ctx.Collection.BindingFor(f.Path)
	if !ok {
		row.Remote = RemoteNotOnRemote
		return nil
	}
	inv, err := r.inventoryFor(binding, inventories)
	if err != nil {
		return err
	}

	base := filepath.Base(f.Path)
	rf, present := inv.byName[base]
	if !present {
		row.Remote = RemoteNotOnRemote
		return nil
	}
	if rf.HasMD5 && row.MD5 != "" {
		if rf.MD5 == row.MD5 {
			row.Remote = RemoteIdentical
		} else {
			row.Remote = RemoteDifferent
		}
		return nil
	}
	// Open Question decision (spec.md §9): remote lacks MD5. Fall back to
	// size comparison; if sizes also differ, conservatively call it
	// Different rather than guessing Identical.
	if rf.Size == row.Size {
		row.Remote = RemoteIdentical
	} else {
		row.Remote = RemoteDifferent
	}
	return nil
}

// UntrackedFiles walks every bound directory looking for files present
// on disk but absent from the manifest (spec.md §4.E "optionally each
// on-disk file discovered under bound directories"). Digesting runs
// through a bounded concurrency.Gate so a directory with thousands of
// files doesn't open that many file descriptors at once.
func (r *Reconciler) UntrackedFiles(maxConcurrentDigests int) ([]FileStatus, error) {
	if maxConcurrentDigests <= 0 {
		maxConcurrentDigests = 8
	}
	gate := concurrency.NewGate(maxConcurrentDigests)

	var candidates []string
	for _, dir := range r.Ctx.Collection.SortedDirectories() {
		full := filepath.Join(r.Ctx.Root, filepath.FromSlash(dir))
		entries, err := walkFiles(full)
		if err != nil {
			continue // a bound directory that doesn't exist locally yet has nothing untracked
		}
		for _, entry := range entries {
			rel := path.Join(dir, entry)
			if _, tracked := r.Ctx.Collection.Files[rel]; !tracked {
				candidates = append(candidates, rel)
			}
		}
	}
	sort.Strings(candidates)

	rows := make([]FileStatus, len(candidates))
	errs := make([]error, len(candidates))
	done := make(chan int, len(candidates))
	for i, rel := range candidates {
		i, rel := i, rel
		gate.Enter()
		go func() {
			defer gate.Leave()
			result, err := r.Digests.Digest(rel)
			if err != nil {
				errs[i] = err
			} else {
				rows[i] = FileStatus{Path: rel, Local: LocalUntracked, Remote: RemoteNotQueried, MD5: result.MD5, Size: result.Size}
			}
			done <- i
		}()
	}
	for range candidates {
		<-done
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}
