package reconcile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ndlib/scidataflow/config"
	"github.com/ndlib/scidataflow/digest"
	"github.com/ndlib/scidataflow/manifest"
	"github.com/ndlib/scidataflow/remote"
	"github.com/ndlib/scidataflow/transfer"
)

// Add computes a digest for each path and inserts a manifest entry
// (spec.md §4.E "add"). Adds never touch a remote.
func (r *Reconciler) Add(paths []string, overwrite bool) ([]manifest.DataFile, error) {
	rels, err := r.canonicalizeAll(paths)
	if err != nil {
		return nil, err
	}
	results := make([]manifest.DataFile, 0, len(rels))
	for _, rel := range rels {
		result, err := r.Digests.Digest(rel)
		if err != nil {
			return nil, err
		}
		f := manifest.DataFile{Path: rel, MD5: result.MD5, Size: result.Size, Modified: time.Now().UTC()}
		if err := r.Ctx.Collection.AddFile(f, overwrite); err != nil {
			return nil, fmt.Errorf("add %s: %w", rel, err)
		}
		results = append(results, f)
	}
	return results, nil
}

// Update recomputes the digest for each path and rewrites its manifest
// entry unconditionally (spec.md §4.E "update"). Fails with
// ErrNotInManifest on unknown paths.
func (r *Reconciler) Update(paths []string) ([]manifest.DataFile, error) {
	rels, err := r.canonicalizeAll(paths)
	if err != nil {
		return nil, err
	}
	results := make([]manifest.DataFile, 0, len(rels))
	for _, rel := range rels {
		existing, ok := r.Ctx.Collection.Files[rel]
		if !ok {
			return nil, fmt.Errorf("update %s: %w", rel, manifest.ErrNotInManifest)
		}
		result, err := r.Digests.Digest(rel)
		if err != nil {
			return nil, err
		}
		f := *existing
		f.MD5 = result.MD5
		f.Size = result.Size
		f.Modified = time.Now().UTC()
		if err := r.Ctx.Collection.UpdateFile(f); err != nil {
			return nil, err
		}
		results = append(results, f)
	}
	return results, nil
}

// Remove deletes manifest entries for paths without touching disk
// (spec.md §4.E "rm").
func (r *Reconciler) Remove(paths []string) error {
	rels, err := r.canonicalizeAll(paths)
	if err != nil {
		return err
	}
	for _, rel := range rels {
		if err := r.Ctx.Collection.RemoveFile(rel); err != nil {
			return fmt.Errorf("rm %s: %w", rel, err)
		}
	}
	return nil
}

// SetTracked toggles the tracked flag for every path (spec.md §4.E
// "track(paths) / untrack(paths)").
func (r *Reconciler) SetTracked(paths []string, tracked bool) error {
	rels, err := r.canonicalizeAll(paths)
	if err != nil {
		return err
	}
	for _, rel := range rels {
		if err := r.Ctx.Collection.SetTracked(rel, tracked); err != nil {
			return fmt.Errorf("track %s: %w", rel, err)
		}
	}
	return nil
}

// canonicalizeAll resolves every raw path against the project root,
// returning manifest-relative paths in lexicographic order (spec.md
// §4.E "Ordering & tie-breaks: all batch operations process files in
// lexicographic order").
func (r *Reconciler) canonicalizeAll(paths []string) ([]string, error) {
	rels := make([]string, len(paths))
	for i, p := range paths {
		rel, err := digest.Canonicalize(r.Ctx.Root, p)
		if err != nil {
			return nil, err
		}
		rels[i] = rel
	}
	sort.Strings(rels)
	return rels, nil
}

// Link creates a RemoteBinding for dir after calling the adapter's
// EnsureProject, persisting the token to the user auth-key file rather
// than the manifest (spec.md §4.E "link"). Linking a directory that
// already has a binding replaces that binding. Rejects if dir overlaps
// a different existing binding or if any tracked file under dir has a
// non-leaf subpath (the flat-remote hazard, spec.md §9).
func (r *Reconciler) Link(dirArg string, kind manifest.Kind, token, name string) (*manifest.RemoteBinding, error) {
	dir, err := canonicalizeDir(r.Ctx.Root, dirArg)
	if err != nil {
		return nil, err
	}
	if _, rebind := r.Ctx.Collection.Remotes[dir]; !rebind {
		if err := r.Ctx.Collection.CheckOverlap(dir); err != nil {
			return nil, err
		}
	}
	if err := r.Ctx.Collection.CheckFlatRemote(dir); err != nil {
		return nil, err
	}

	adapter, err := r.NewAdapter(kind)
	if err != nil {
		return nil, err
	}
	if token != "" {
		if err := adapter.Authenticate(token); err != nil {
			return nil, err
		}
	}
	projectName := name
	if projectName == "" {
		projectName = filepath.Base(dir)
	}
	projectID, err := adapter.EnsureProject(projectName)
	if err != nil {
		return nil, err
	}
	if token != "" {
		if err := config.SetToken(kind, token); err != nil {
			return nil, err
		}
	}

	binding := manifest.RemoteBinding{
		Directory:   dir,
		Kind:        kind,
		ProjectID:   projectID,
		Name:        name,
		SupportsMD5: adapter.SupportsMD5(),
	}
	r.Ctx.Collection.AddBinding(binding)
	r.adapters[kind] = adapter
	return &binding, nil
}

// Metadata attaches title/description/creator to the binding rooted at
// dir. Only Zenodo depositions carry this metadata (spec.md §4.C);
// other kinds return remote.ErrUnsupported.
func (r *Reconciler) Metadata(dirArg, title, description, creator string) error {
	dir, err := canonicalizeDir(r.Ctx.Root, dirArg)
	if err != nil {
		return err
	}
	binding, ok := r.Ctx.Collection.Remotes[dir]
	if !ok {
		return fmt.Errorf("metadata %s: %w", dir, manifest.ErrNotInManifest)
	}
	adapter, err := r.adapterFor(binding)
	if err != nil {
		return err
	}
	zenodo, ok := adapter.(*remote.ZenodoAdapter)
	if !ok {
		return remote.ErrUnsupported
	}
	return zenodo.SetMetadata(binding.ProjectID, title, description, creator)
}

// TransferResult is one completed job, shaped for CLI reporting.
type TransferResult struct {
	Path       string
	Direction  transfer.Direction
	Status     transfer.Status
	SkipReason transfer.SkipReason
	Err        error
	MD5        string
	Size       int64
}

// Pull downloads every tracked file whose binding resolves to an
// adapter and whose remote counterpart exists, per spec.md §4.E "pull":
// entries Deleted locally are always fetched; entries that exist
// locally but differ are fetched only when overwrite is true.
func (r *Reconciler) Pull(ctx context.Context, cfg transfer.Config, reporter transfer.Reporter, overwrite bool) ([]TransferResult, error) {
	if reporter == nil {
		reporter = transfer.NopReporter{}
	}
	inventories := make(map[string]*remoteInventory)
	var jobs []*transfer.Job
	var results []TransferResult

	for _, p := range r.Ctx.Collection.SortedPaths() {
		f := r.Ctx.Collection.Files[p]
		if !f.Tracked {
			continue
		}
		binding, ok := r.Ctx.Collection.BindingFor(p)
		if !ok {
			continue
		}
		adapter, err := r.adapterFor(binding)
		if err != nil {
			return nil, err
		}
		inv, err := r.inventoryFor(binding, inventories)
		if err != nil {
			return nil, err
		}
		rf, present := inv.byName[filepath.Base(p)]
		if !present {
			continue
		}

		exists, size, _, err := r.Digests.Stat(p)
		if err != nil {
			return nil, err
		}
		if exists && !overwrite {
			// spec.md §4.E: a locally-present file that differs is
			// skipped without being fetched unless overwrite is set.
			localMD5 := f.MD5
			if result, err := r.Digests.Digest(p); err == nil {
				localMD5 = result.MD5
			}
			identical := (rf.HasMD5 && rf.MD5 == localMD5) || (!rf.HasMD5 && rf.Size == size)
			status := transfer.Skipped
			reason := transfer.SkipIdentical
			if !identical {
				reason = "different, needs --overwrite"
			}
			results = append(results, TransferResult{Path: p, Direction: transfer.Download, Status: status, SkipReason: reason})
			continue
		}

		downloadURL, err := adapter.DownloadURL(rf)
		if err != nil {
			return nil, err
		}
		localAbs := filepath.Join(r.Ctx.Root, filepath.FromSlash(p))
		job := transfer.NewJob(transfer.Download, localAbs, downloadURL, p, rf.MD5, overwrite)
		job.WithExec(r.downloadExec(downloadURL, localAbs, reporter))
		jobs = append(jobs, job)
	}

	engine := transfer.NewEngine(cfg, reporter)
	completed := engine.Run(ctx, jobs)
	for _, job := range completed {
		if job.Status == transfer.Done {
			f := r.Ctx.Collection.Files[job.RelativePath]
			f.MD5 = job.MD5
			f.Size = job.Size
			f.Modified = time.Now().UTC()
			r.Digests.Invalidate(job.RelativePath)
		}
		results = append(results, TransferResult{
			Path: job.RelativePath, Direction: job.Direction, Status: job.Status,
			SkipReason: job.SkipReason, Err: job.Err, MD5: job.MD5, Size: job.Size,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

func (r *Reconciler) downloadExec(downloadURL, localAbs string, reporter transfer.Reporter) transfer.Exec {
	return func(ctx context.Context, job *transfer.Job) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return remote.ErrNetwork
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return &remote.APIError{Status: resp.StatusCode}
		}

		out, err := transfer.LocalWriter(localAbs)
		if err != nil {
			return err
		}
		defer out.Close()

		size, md5Hex, err := transfer.StreamCopy(out, resp.Body, 64*1024, func(total int64) {
			reporter.BytesDone(job, total, resp.ContentLength)
		})
		if err != nil {
			transfer.RemovePartial(localAbs)
			return err
		}
		if job.ExpectedMD5 != "" && job.ExpectedMD5 != md5Hex {
			transfer.RemovePartial(localAbs)
			return transfer.ErrChecksumMismatch
		}
		job.MD5 = md5Hex
		job.Size = size
		return nil
	}
}

// Push uploads every tracked, locally-Current file to its bound
// remote; Modified files are refused unless overwrite is true (spec.md
// §4.E "push").
func (r *Reconciler) Push(ctx context.Context, cfg transfer.Config, reporter transfer.Reporter, overwrite bool) ([]TransferResult, error) {
	if reporter == nil {
		reporter = transfer.NopReporter{}
	}
	inventories := make(map[string]*remoteInventory)
	var jobs []*transfer.Job
	var results []TransferResult

	for _, p := range r.Ctx.Collection.SortedPaths() {
		f := r.Ctx.Collection.Files[p]
		if !f.Tracked {
			continue
		}
		binding, ok := r.Ctx.Collection.BindingFor(p)
		if !ok {
			continue
		}
		exists, size, _, err := r.Digests.Stat(p)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue // nothing local to push
		}
		result, err := r.Digests.Digest(p)
		if err != nil {
			return nil, err
		}
		modified := result.MD5 != f.MD5
		if modified && !overwrite {
			results = append(results, TransferResult{Path: p, Direction: transfer.Upload, Status: transfer.Skipped, SkipReason: "modified locally, needs --overwrite"})
			continue
		}

		adapter, err := r.adapterFor(binding)
		if err != nil {
			return nil, err
		}
		inv, err := r.inventoryFor(binding, inventories)
		if err != nil {
			return nil, err
		}

		localAbs := filepath.Join(r.Ctx.Root, filepath.FromSlash(p))
		job := transfer.NewJob(transfer.Upload, localAbs, binding.ProjectID, p, result.MD5, overwrite)
		job.Size = size
		rf, present := inv.byName[filepath.Base(p)]
		job.WithExec(r.uploadExec(adapter, binding, rf, present, reporter))
		jobs = append(jobs, job)
	}

	engine := transfer.NewEngine(cfg, reporter)
	completed := engine.Run(ctx, jobs)
	for _, job := range completed {
		if job.Status == transfer.Done {
			f := r.Ctx.Collection.Files[job.RelativePath]
			f.MD5 = job.MD5
			f.Size = job.Size
			f.Modified = time.Now().UTC()
		}
		results = append(results, TransferResult{
			Path: job.RelativePath, Direction: job.Direction, Status: job.Status,
			SkipReason: job.SkipReason, Err: job.Err, MD5: job.MD5, Size: job.Size,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

func (r *Reconciler) uploadExec(adapter remote.Adapter, binding *manifest.RemoteBinding, rf remote.RemoteFile, present bool, reporter transfer.Reporter) transfer.Exec {
	return func(ctx context.Context, job *transfer.Job) error {
		if present && job.PreCheck(true, job.Size, rf.MD5, rf.HasMD5, rf.Size) {
			job.Status = transfer.Skipped
			job.SkipReason = transfer.SkipIdentical
			return nil
		}
		_, err := adapter.Upload(binding.ProjectID, job.LocalPath, true)
		if err != nil {
			return err
		}
		job.MD5 = job.ExpectedMD5
		// adapter.Upload has no streaming hook to report mid-transfer
		// progress through (it hands the whole file to the remote's
		// upload client), so the only bytes_done signal available here
		// is the completed transfer's full size.
		reporter.BytesDone(job, job.Size, job.Size)
		return nil
	}
}

// Get downloads url once, as if from a StaticURL remote, and registers
// an add-equivalent manifest entry recording the URL (spec.md §4.E
// "get"). The file is written to, and registered under, one
// project-relative path: dest if set, else name if set, else the URL's
// base name.
func (r *Reconciler) Get(ctx context.Context, url, dest, name string) (manifest.DataFile, error) {
	base := name
	if base == "" {
		base = filepath.Base(url)
	}
	rel, err := digest.Canonicalize(r.Ctx.Root, firstNonEmpty(dest, base))
	if err != nil {
		return manifest.DataFile{}, err
	}
	localAbs := filepath.Join(r.Ctx.Root, filepath.FromSlash(rel))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return manifest.DataFile{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return manifest.DataFile{}, remote.ErrNetwork
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return manifest.DataFile{}, &remote.APIError{Status: resp.StatusCode}
	}

	out, err := transfer.LocalWriter(localAbs)
	if err != nil {
		return manifest.DataFile{}, err
	}
	defer out.Close()
	size, md5Hex, err := transfer.StreamCopy(out, resp.Body, 64*1024, nil)
	if err != nil {
		transfer.RemovePartial(localAbs)
		return manifest.DataFile{}, err
	}

	f := manifest.DataFile{Path: rel, MD5: md5Hex, Size: size, Modified: time.Now().UTC(), URL: url}
	if err := r.Ctx.Collection.AddFile(f, true); err != nil {
		return manifest.DataFile{}, err
	}
	r.Digests.Invalidate(rel)
	return f, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// BulkSummary reports the outcome of a bulk get.
type BulkSummary struct {
	Downloaded int
	Registered int
	Skipped    int
	Errors     []error
}

// Bulk parses a TSV/CSV file and enqueues Get for every URL in the
// given zero-indexed column, skipping the header row when requested
// (spec.md §4.E "bulk"). A file ending in .csv is read as
// comma-separated; any other file as tab-separated. Rows whose URL maps
// to an already-tracked path are counted as skipped rather than failing
// the batch.
func (r *Reconciler) Bulk(ctx context.Context, tabularFile string, column int, header bool) (BulkSummary, error) {
	f, err := os.Open(tabularFile)
	if err != nil {
		return BulkSummary{}, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	if ext := filepath.Ext(tabularFile); ext == ".csv" || ext == ".CSV" {
		reader.Comma = ','
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var summary BulkSummary
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, err
		}
		rowNum++
		if header && rowNum == 1 {
			continue
		}
		if column < 0 || column >= len(record) {
			summary.Errors = append(summary.Errors, fmt.Errorf("bulk: row %d has no column %d", rowNum, column))
			continue
		}
		url := record[column]
		if url == "" {
			continue
		}

		rel, canonErr := digest.Canonicalize(r.Ctx.Root, filepath.Base(url))
		if canonErr == nil {
			if _, already := r.Ctx.Collection.Files[rel]; already {
				summary.Skipped++
				continue
			}
		}

		if _, err := r.Get(ctx, url, "", ""); err != nil {
			summary.Errors = append(summary.Errors, fmt.Errorf("bulk: %s: %w", url, err))
			continue
		}
		summary.Downloaded++
		summary.Registered++
	}
	return summary, nil
}
