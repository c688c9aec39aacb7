package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ndlib/scidataflow/config"
	"github.com/ndlib/scidataflow/digest"
	"github.com/ndlib/scidataflow/manifest"
	"github.com/ndlib/scidataflow/project"
	"github.com/ndlib/scidataflow/remote"
)

// canonicalizeDir is digest.Canonicalize for directories: it additionally
// accepts the project root itself (input resolving to "."), which
// Canonicalize rejects since a tracked *file* can never be the root.
func canonicalizeDir(root, input string) (string, error) {
	if input == "" || input == "." {
		return ".", nil
	}
	rel, err := digest.Canonicalize(root, input)
	if err != nil {
		return "", err
	}
	return rel, nil
}

// Reconciler bundles the project context, digest service, and loaded
// auth keys that every operation in this package needs, the way
// bclientapi's itemAttributes bundled a single item's upload
// parameters — generalized here to cover all ten operations instead of
// one upload call.
type Reconciler struct {
	Ctx     *project.Context
	Digests *digest.Service
	Keys    config.AuthKeys

	// NewAdapter constructs the adapter for a given kind. Defaults to
	// remote.New (the production hosts); tests substitute a factory
	// returning an in-memory fake adapter.
	NewAdapter func(manifest.Kind) (remote.Adapter, error)

	adapters map[manifest.Kind]remote.Adapter
}

// New builds a Reconciler for an already-discovered project.
func New(ctx *project.Context, digests *digest.Service, keys config.AuthKeys) *Reconciler {
	return &Reconciler{
		Ctx:        ctx,
		Digests:    digests,
		Keys:       keys,
		NewAdapter: remote.New,
		adapters:   make(map[manifest.Kind]remote.Adapter),
	}
}

// adapterFor returns the authenticated Adapter for binding.Kind,
// constructing and authenticating it once per kind per Reconciler
// (each binding of the same kind shares one adapter instance, mirroring
// how bclientapi's Connection is built once and reused across files).
func (r *Reconciler) adapterFor(binding *manifest.RemoteBinding) (remote.Adapter, error) {
	if a, ok := r.adapters[binding.Kind]; ok {
		return a, nil
	}
	a, err := r.NewAdapter(binding.Kind)
	if err != nil {
		return nil, err
	}
	if token, ok := r.Keys[binding.Kind]; ok && token != "" {
		if err := a.Authenticate(token); err != nil {
			return nil, err
		}
	}
	r.adapters[binding.Kind] = a
	return a, nil
}

// inventoryFor returns binding's remote file inventory, fetching it at
// most once per cache (a map the caller owns for the lifetime of one
// Status/Pull/Push call).
func (r *Reconciler) inventoryFor(binding *manifest.RemoteBinding, cache map[string]*remoteInventory) (*remoteInventory, error) {
	if inv, ok := cache[binding.Directory]; ok {
		return inv, nil
	}
	adapter, err := r.adapterFor(binding)
	if err != nil {
		return nil, err
	}
	// StaticURL has no deposition API to query; its inventory is
	// whatever the manifest itself claims (spec.md §4.C "list_files
	// reports what the manifest claims"), so reseed it from the
	// binding's URL-bearing DataFiles before asking ListFiles for them.
	if staticAdapter, ok := adapter.(*remote.StaticURLAdapter); ok {
		staticAdapter.SeedFiles(r.staticURLInventory(binding))
	}
	files, err := adapter.ListFiles(binding.ProjectID)
	if err != nil {
		return nil, err
	}
	inv := &remoteInventory{byName: make(map[string]remote.RemoteFile, len(files))}
	for _, rf := range files {
		inv.byName[rf.Name] = rf
	}
	cache[binding.Directory] = inv
	return inv, nil
}

// staticURLInventory builds the RemoteFile list a StaticURL binding
// reports: one entry per manifest DataFile under binding.Directory that
// carries a URL, using the MD5/size the manifest last recorded for it.
func (r *Reconciler) staticURLInventory(binding *manifest.RemoteBinding) []remote.RemoteFile {
	var files []remote.RemoteFile
	for _, p := range r.Ctx.Collection.SortedPaths() {
		f := r.Ctx.Collection.Files[p]
		if f.URL == "" {
			continue
		}
		owner, ok := r.Ctx.Collection.BindingFor(p)
		if !ok || owner.Directory != binding.Directory {
			continue
		}
		files = append(files, remote.RemoteFile{
			Name:        filepath.Base(p),
			MD5:         f.MD5,
			HasMD5:      f.MD5 != "",
			Size:        f.Size,
			DownloadURL: f.URL,
		})
	}
	return files
}

// walkFiles lists every regular file under root, returning paths
// relative to root with forward slashes, skipping dotfile directories
// the way fileutil.go's addToUploadList does.
func walkFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reconcile: %s is not a directory", root)
	}

	var out []string
	err = filepath.Walk(root, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if fi.Name() != filepath.Base(root) && strings.HasPrefix(fi.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
