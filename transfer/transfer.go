// Package transfer runs uploads and downloads through a
// bounded-concurrency engine (spec.md §4.D, §5): a batch of
// TransferJobs run one goroutine per job, with a semaphore capping how
// many are in flight at once. Downloads stream bytes while computing
// MD5 inline rather than reading the file twice.
//
// This generalizes bclientapi/bclientapi.go's SendFiles/GetFiles
// (channel-fed worker loops over a fixed file queue) from "talk to one
// bendo server" to "move bytes between local disk and any remote.Adapter".
package transfer

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Direction is which way a job's bytes flow.
type Direction int

const (
	Download Direction = iota
	Upload
)

func (d Direction) String() string {
	if d == Upload {
		return "upload"
	}
	return "download"
}

// Status is a job's lifecycle state, in the shape of
// transaction/transaction.go's Status enum (Pending/Processing/Finished/
// Error) generalized from an ingest transaction to a single file transfer.
type Status int

const (
	Pending Status = iota
	InFlight
	Done
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case InFlight:
		return "in-flight"
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SkipReason names why a job was skipped without transferring bytes
// (spec.md §7: "surfaced as skip reasons in the summary, not as command
// failure").
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipIdentical   SkipReason = "identical"
	SkipUnsupported SkipReason = "unsupported"
)

var (
	ErrChecksumMismatch = errors.New("transfer: checksum mismatch")
	ErrCancelled        = errors.New("transfer: cancelled")
)

// Job describes one file transfer (spec.md §4.D's TransferJob).
type Job struct {
	ID           string
	Direction    Direction
	LocalPath    string // absolute
	RemotePath   string // the project/deposition ID for uploads, or the download URL for downloads
	RelativePath string // manifest-relative path, for reporting
	ExpectedMD5  string // optional; empty means "not known"
	Overwrite    bool

	Status     Status
	SkipReason SkipReason
	Err        error
	MD5        string
	Size       int64

	exec Exec // attached by WithExec; see engine.go
}

// NewJob allocates a Job with a fresh id, mirroring bclientapi's
// per-file fileIDStruct bookkeeping but keyed by a real UUID instead of
// a server-assigned file id.
func NewJob(dir Direction, localPath, remotePath, relativePath, expectedMD5 string, overwrite bool) *Job {
	return &Job{
		ID:           uuid.NewString(),
		Direction:    dir,
		LocalPath:    localPath,
		RemotePath:   remotePath,
		RelativePath: relativePath,
		ExpectedMD5:  expectedMD5,
		Overwrite:    overwrite,
		Status:       Pending,
	}
}

// PreCheck applies the skip rule from spec.md §4.D step 1 and reports
// whether the job can be skipped. Overwrite disables the rule entirely,
// and a download whose destination does not exist is never skipped.
// Otherwise, when the remote has an MD5 and ExpectedMD5 is set, it
// compares remoteMD5 with ExpectedMD5; else it compares localSize with
// remoteSize. PreCheck never reads the local file: for an upload
// ExpectedMD5 carries the local digest, while for a download the local
// file's digest is not an input, so only its existence and size are
// checked against the remote.
func (j *Job) PreCheck(existsLocally bool, localSize int64, remoteMD5 string, remoteHasMD5 bool, remoteSize int64) bool {
	if j.Overwrite {
		return false
	}
	if j.Direction == Download {
		if !existsLocally {
			return false
		}
		if remoteHasMD5 && j.ExpectedMD5 != "" {
			return remoteMD5 == j.ExpectedMD5
		}
		return localSize == remoteSize
	}
	// Upload: mirror rule, comparing the local file against what the
	// caller already knows is on the remote.
	if remoteHasMD5 && j.ExpectedMD5 != "" {
		return remoteMD5 == j.ExpectedMD5
	}
	return localSize == remoteSize
}

// StreamCopy copies src into dst in bufferSize chunks while feeding an
// MD5 hash, so the digest is available the instant the last byte lands
// without a second pass over the file (spec.md §9 "Streaming digest").
// reconcile's download Exec closure and Get use this; uploads go
// through remote.Adapter.Upload instead.
// onProgress, if non-nil, is called after every chunk lands with the
// running total so a Reporter can report bytes_done (spec.md §4.D)
// during the copy instead of only at job start/finish.
func StreamCopy(dst io.Writer, src io.Reader, bufferSize int, onProgress func(total int64)) (size int64, md5Hex string, err error) {
	hash := md5.New()
	tee := io.TeeReader(src, hash)
	buf := make([]byte, bufferSize)
	var total int64
	for {
		n, rerr := tee.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return total, "", werr
			}
			total += int64(n)
			if onProgress != nil {
				onProgress(total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return total, "", rerr
		}
	}
	return total, hex.EncodeToString(hash.Sum(nil)), nil
}

// RemovePartial deletes a partially-written destination file, used both
// on checksum mismatch (spec.md §4.D step 3) and on cancellation
// (spec.md §5 "partially-written destination files are deleted").
func RemovePartial(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}

// LocalWriter opens destPath for writing, creating parent directories
// as needed, truncating any existing content.
func LocalWriter(destPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	return os.OpenFile(destPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
}
