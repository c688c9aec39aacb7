package reconcile

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/ndlib/scidataflow/manifest"
	"github.com/ndlib/scidataflow/remote"
)

// fakeAdapter is an in-memory stand-in for a remote.Adapter, used so
// reconcile's tests exercise push/pull/link against the same interface
// production code uses without touching the network. remote package's
// own httptest-backed tests (figshare_test.go, zenodo_test.go) already
// cover each concrete adapter's wire format; this fake isolates
// Reconciler's orchestration logic from that.
type fakeAdapter struct {
	mu          sync.Mutex
	files       map[string]remote.RemoteFile
	supportsMD5 bool
	downloadSrv func(name string) string // returns a servable URL for name
	uploads     int
}

func newFakeAdapter(supportsMD5 bool) *fakeAdapter {
	return &fakeAdapter{files: make(map[string]remote.RemoteFile), supportsMD5: supportsMD5}
}

func (f *fakeAdapter) Authenticate(token string) error { return nil }

func (f *fakeAdapter) EnsureProject(name string) (string, error) { return "proj-" + name, nil }

func (f *fakeAdapter) ListFiles(projectID string) ([]remote.RemoteFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]remote.RemoteFile, 0, len(f.files))
	for _, rf := range f.files {
		out = append(out, rf)
	}
	return out, nil
}

func (f *fakeAdapter) Upload(projectID, localPath string, overwrite bool) (remote.RemoteFile, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return remote.RemoteFile{}, err
	}
	name := filepath.Base(localPath)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.files[name]; exists && !overwrite {
		return remote.RemoteFile{}, remote.ErrAlreadyExists
	}
	sum := md5.Sum(data)
	rf := remote.RemoteFile{Name: name, MD5: hex.EncodeToString(sum[:]), HasMD5: f.supportsMD5, Size: int64(len(data))}
	if f.downloadSrv != nil {
		rf.DownloadURL = f.downloadSrv(name)
	}
	f.files[name] = rf
	f.uploads++
	return rf, nil
}

func (f *fakeAdapter) DownloadURL(rf remote.RemoteFile) (string, error) {
	if rf.DownloadURL == "" {
		return "", remote.ErrNotFound
	}
	return rf.DownloadURL, nil
}

func (f *fakeAdapter) SupportsMD5() bool { return f.supportsMD5 }

// seed installs a remote file directly (bypassing Upload), used to set
// up "remote already has this file" fixtures.
func (f *fakeAdapter) seed(rf remote.RemoteFile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[rf.Name] = rf
}

// fixedAdapterFactory always returns the same adapter regardless of
// kind, letting tests wire a single fakeAdapter into a Reconciler
// without depending on manifest.Kind.
func fixedAdapterFactory(a remote.Adapter) func(manifest.Kind) (remote.Adapter, error) {
	return func(manifest.Kind) (remote.Adapter, error) { return a, nil }
}
