package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ndlib/scidataflow/digest"
	"github.com/ndlib/scidataflow/manifest"
	"github.com/ndlib/scidataflow/project"
	"github.com/ndlib/scidataflow/remote"
	"github.com/ndlib/scidataflow/transfer"
)

// category maps a core-package sentinel error to the abstract error
// kind spec.md §7 names, for the one-line "category + actionable
// message" diagnostic. Core packages keep their own per-concern
// sentinels (the teacher's bclientapi/bendoapi.go idiom); this is the
// one place that classifies them for display, rather than threading a
// shared typed error through every package.
func category(err error) string {
	switch {
	case errors.Is(err, project.ErrNoProject):
		return "NoManifest"
	case errors.Is(err, digest.ErrOutsideProject):
		return "OutsideProject"
	case errors.Is(err, manifest.ErrNotInManifest):
		return "NotInManifest"
	case errors.Is(err, manifest.ErrAlreadyInManifest):
		return "AlreadyInManifest"
	case errors.Is(err, manifest.ErrOverlappingBinding):
		return "OverlappingBinding"
	case errors.Is(err, manifest.ErrSubpathInFlatRemote):
		return "SubpathInFlatRemote"
	case errors.Is(err, digest.ErrMissing), errors.Is(err, digest.ErrIO):
		return "IoError"
	case errors.Is(err, remote.ErrAuth):
		return "AuthError"
	case errors.Is(err, remote.ErrNetwork):
		return "NetworkError"
	case errors.Is(err, remote.ErrAlreadyExists):
		return "AlreadyExists"
	case errors.Is(err, remote.ErrUnsupported):
		return "Unsupported"
	case errors.Is(err, transfer.ErrChecksumMismatch):
		return "ChecksumMismatch"
	case errors.Is(err, transfer.ErrCancelled):
		return "Cancelled"
	case asAPIError(err) != nil:
		return "RemoteApiError"
	default:
		return "IoError"
	}
}

func asAPIError(err error) *remote.APIError {
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// reportAndExit prints the one-line diagnostic to stderr and returns a
// non-zero exit code (spec.md §6 "Exit code 0 on success, non-zero on
// any error; stderr receives human-readable diagnostics").
func reportAndExit(err error) int {
	fmt.Fprintf(os.Stderr, "%s: %s\n", category(err), err.Error())
	logger.Debug(err)
	return 1
}
