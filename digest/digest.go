// Package digest computes content digests and file metadata for paths
// inside a project, and canonicalizes paths relative to a project root.
package digest

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// bufferSize is the chunk size used while streaming a file through the
// hasher. Chosen to match the buffer size bendo's upload/download paths
// use for network I/O (see bclientapi/chunkfile.go).
const bufferSize = 64 * 1024

// Sentinel errors. Mirrors bclientapi/bendoapi.go's style of package-level
// sentinel errors checked with errors.Is rather than a single error type.
var (
	ErrMissing        = errors.New("digest: file does not exist")
	ErrIO             = errors.New("digest: unable to read file")
	ErrOutsideProject = errors.New("digest: path escapes project root")
)

// Result holds the outcome of digesting a file: its hex-encoded MD5 and
// its size in bytes, as observed during the same streaming pass.
type Result struct {
	MD5  string
	Size int64
}

// Service streams digests for files under a project root, caching
// results so that repeated status checks in one process don't re-read
// unchanged files. It generalizes store/cache.go's sizecache from
// "remember a remote HEAD response" to "remember a local digest", keyed
// on path+mtime+size so a real filesystem change invalidates the entry.
type Service struct {
	root  string
	cache *gocache.Cache
}

// NewService returns a digest Service rooted at root. Entries expire
// ttl after they were cached, whether or not they were read since;
// ttl <= 0 means use the default (10 minutes).
func NewService(root string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		root:  root,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// cacheKey encodes the identity a cached digest is only valid for: the
// path plus the mtime/size pair at the time it was computed. If any of
// those change, the key changes and Get misses, so drift is never
// masked by a stale cache entry.
func cacheKey(relPath string, size int64, mtime time.Time) string {
	return relPath + "\x00" + mtime.UTC().String() + "\x00" + strconv.FormatInt(size, 10)
}

// Digest streams the file at relPath (relative to the service's root),
// computing its MD5 and size in a single pass. The file is always
// stat'ed first; a cache hit is then returned without re-reading it.
func (s *Service) Digest(relPath string) (Result, error) {
	full := filepath.Join(s.root, relPath)
	fi, err := os.Stat(full)
	if errors.Is(err, os.ErrNotExist) {
		return Result{}, ErrMissing
	} else if err != nil {
		return Result{}, ErrIO
	}
	key := cacheKey(relPath, fi.Size(), fi.ModTime())
	if v, ok := s.cache.Get(key); ok {
		return v.(Result), nil
	}
	result, err := digestFile(full)
	if err != nil {
		return Result{}, err
	}
	s.cache.Set(key, result, gocache.DefaultExpiration)
	return result, nil
}

// digestFile does the actual streaming MD5 computation. It never reads
// the whole file into memory: bytes flow through a fixed buffer into the
// hasher, same as util/hashwriter.go's HashWriter wrapping io.Copy in
// bendo's upload/download paths.
func digestFile(full string) (Result, error) {
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return Result{}, ErrMissing
	} else if err != nil {
		return Result{}, ErrIO
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, bufferSize)
	n, err := io.CopyBuffer(h, f, buf)
	if err != nil {
		return Result{}, ErrIO
	}
	return Result{
		MD5:  hex.EncodeToString(h.Sum(nil)),
		Size: n,
	}, nil
}

// Stat reports whether relPath exists under the service root, and if so
// its size and modification time.
func (s *Service) Stat(relPath string) (exists bool, size int64, mtime time.Time, err error) {
	full := filepath.Join(s.root, relPath)
	fi, statErr := os.Stat(full)
	if errors.Is(statErr, os.ErrNotExist) {
		return false, 0, time.Time{}, nil
	} else if statErr != nil {
		return false, 0, time.Time{}, ErrIO
	}
	return true, fi.Size(), fi.ModTime(), nil
}

// Invalidate drops any cached digest for relPath, forcing the next
// Digest call to re-read the file. Callers use this right after writing
// a file (e.g. after a download completes) so a subsequent status check
// doesn't see a stale cache entry keyed on the pre-write mtime.
func (s *Service) Invalidate(relPath string) {
	// Since the cache key embeds mtime+size we can't compute the exact
	// key without re-stat'ing, so just flush relPath's only possible
	// live entry by re-statting and deleting that key if present.
	full := filepath.Join(s.root, relPath)
	if fi, err := os.Stat(full); err == nil {
		s.cache.Delete(cacheKey(relPath, fi.Size(), fi.ModTime()))
	}
}

// Canonicalize normalizes input (which may be absolute or relative) into
// a POSIX-style path relative to root, rejecting anything that would
// resolve outside of it.
func Canonicalize(root, input string) (string, error) {
	var abs string
	if filepath.IsAbs(input) {
		abs = input
	} else {
		abs = filepath.Join(root, input)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", ErrOutsideProject
	}
	abs, err = filepath.Abs(abs)
	if err != nil {
		return "", ErrOutsideProject
	}
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil {
		return "", ErrOutsideProject
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideProject
	}
	if rel == "." {
		return "", ErrOutsideProject
	}
	return filepath.ToSlash(rel), nil
}
