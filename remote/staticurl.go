package remote

// StaticURLAdapter is the read-only remote kind for a binding whose
// files simply live at arbitrary HTTP(S) URLs (spec.md §4.C
// "StaticURL: read-only; ensure_project is a no-op; list_files reports
// what the manifest claims; upload fails with Unsupported").
//
// Unlike FigShare/Zenodo there is no deposition API to query for an
// inventory, so ListFiles doesn't make a network call at all: it
// returns whatever the caller has seeded via SeedFiles, which
// reconcile populates from the manifest's own URL-tracking DataFiles.
type StaticURLAdapter struct {
	known []RemoteFile
}

// NewStaticURL returns an empty StaticURL adapter.
func NewStaticURL() *StaticURLAdapter {
	return &StaticURLAdapter{}
}

// SeedFiles installs the inventory ListFiles will report. reconcile
// calls this once per StaticURL binding, building entries from the
// manifest's tracked DataFiles that have a URL set.
func (a *StaticURLAdapter) SeedFiles(files []RemoteFile) {
	a.known = files
}

func (a *StaticURLAdapter) Authenticate(token string) error {
	return nil
}

func (a *StaticURLAdapter) EnsureProject(name string) (string, error) {
	return name, nil
}

func (a *StaticURLAdapter) ListFiles(projectID string) ([]RemoteFile, error) {
	return a.known, nil
}

func (a *StaticURLAdapter) Upload(projectID, localPath string, overwrite bool) (RemoteFile, error) {
	return RemoteFile{}, ErrUnsupported
}

func (a *StaticURLAdapter) DownloadURL(rf RemoteFile) (string, error) {
	if rf.DownloadURL == "" {
		return "", ErrNotFound
	}
	return rf.DownloadURL, nil
}

func (a *StaticURLAdapter) SupportsMD5() bool { return false }
