// Package remote provides a single capability contract satisfied by
// every kind of remote data repository SciDataFlow talks to, and the
// concrete adapters for FigShare, Zenodo, and arbitrary HTTP(S) URLs.
//
// This generalizes bclientapi/bendoapi.go's Connection — a single HTTP
// client wired to one specific server — into a closed variant of three
// remote kinds, each normalizing a different vendor API behind the same
// Adapter contract (spec.md §4.C).
package remote

import (
	"errors"
	"fmt"

	"github.com/ndlib/scidataflow/manifest"
)

// Sentinel errors, in the style of bclientapi/bendoapi.go's
// package-level Err* values.
var (
	ErrAuth           = errors.New("remote: authentication failed")
	ErrNotFound       = errors.New("remote: not found")
	ErrAlreadyExists  = errors.New("remote: file already exists")
	ErrUnsupported    = errors.New("remote: operation not supported by this remote kind")
	ErrNetwork        = errors.New("remote: network error")
	ErrPublishFailed  = errors.New("remote: deposition failed to publish")
	ErrPublishTimeout = errors.New("remote: timed out waiting for deposition to publish")
)

// APIError wraps an unexpected HTTP response from a remote, carrying
// enough detail for the one-line diagnostic spec.md §7 asks for.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote: unexpected status %d: %s", e.Status, e.Body)
}

// RemoteFile is one entry in a remote's file inventory.
type RemoteFile struct {
	Name        string
	MD5         string // empty if the remote kind doesn't expose it
	HasMD5      bool
	Size        int64
	DownloadURL string
}

// Adapter is the uniform contract every remote kind satisfies (spec.md
// §4.C). Implementations: FigShare, Zenodo, StaticURL.
type Adapter interface {
	// Authenticate records the token this adapter will use for every
	// subsequent call. It makes no request of its own, so a rejected
	// token surfaces as ErrAuth from the first call that uses it.
	Authenticate(token string) error

	// EnsureProject returns the id of an existing deposition/project
	// with the given name, creating one if none exists. Idempotent per
	// (remote, name).
	EnsureProject(name string) (projectID string, err error)

	// ListFiles returns the remote's current file inventory for a
	// project.
	ListFiles(projectID string) ([]RemoteFile, error)

	// Upload streams localPath to the remote under its base filename.
	// If overwrite is false and a same-named file already exists,
	// returns ErrAlreadyExists.
	Upload(projectID, localPath string, overwrite bool) (RemoteFile, error)

	// DownloadURL resolves the URL to fetch rf's bytes from. May be
	// pre-signed or public.
	DownloadURL(rf RemoteFile) (string, error)

	// SupportsMD5 reports whether this remote kind's inventory includes
	// MD5 digests.
	SupportsMD5() bool
}

// New constructs the adapter for kind, pointed at the default production
// API host for that remote. Tests construct the concrete types directly
// with a custom baseURL instead of going through New.
func New(kind manifest.Kind) (Adapter, error) {
	switch kind {
	case manifest.FigShare:
		return NewFigShare(""), nil
	case manifest.Zenodo:
		return NewZenodo(""), nil
	case manifest.StaticURL:
		return NewStaticURL(), nil
	default:
		return nil, fmt.Errorf("remote: unknown kind %q", kind)
	}
}
