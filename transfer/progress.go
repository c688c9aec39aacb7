package transfer

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Reporter receives job lifecycle events (spec.md §4.D: "a reporter
// interface receives {job_id, bytes_done, bytes_total?} updates").
// Start/Finish bracket a job; BytesDone reports incremental progress
// within a job for callers that stream with a custom Exec.
//
// Implementations must not serialize transfers (spec.md §4.D "Progress
// reporting must not serialize transfers") — Engine.Run calls these
// from concurrent goroutines, so any implementation must be safe for
// concurrent use.
type Reporter interface {
	Start(job *Job)
	BytesDone(job *Job, done, total int64)
	Finish(job *Job)
}

// NopReporter discards every event; NewEngine installs it when given a
// nil Reporter.
type NopReporter struct{}

func (NopReporter) Start(*Job)                   {}
func (NopReporter) BytesDone(*Job, int64, int64) {}
func (NopReporter) Finish(*Job)                  {}

// LineReporter prints one aggregate progress line to stderr, updated in
// place, the way bendo's bclientapi.WaitForCommitFinish prints a
// dot-per-poll progress indicator — generalized here to a single
// redrawn line sized to the terminal width instead of an
// ever-growing string of dots.
type LineReporter struct {
	out io.Writer

	mu         sync.Mutex
	active     int
	done       int
	total      int
	bytesByJob map[string]int64 // job.ID -> latest cumulative bytes_done
}

// NewLineReporter builds a LineReporter writing to os.Stderr, sized for
// total jobs up front so the "N/total" portion of the line is stable.
func NewLineReporter(total int) *LineReporter {
	return &LineReporter{out: os.Stderr, total: total, bytesByJob: make(map[string]int64)}
}

// NewReporter picks LineReporter when stderr is a terminal worth
// redrawing a progress line on, and NopReporter otherwise (piped
// output, CI logs), the way git and other CLIs suppress progress bars
// for non-interactive output.
func NewReporter(total int) Reporter {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return NopReporter{}
	}
	return NewLineReporter(total)
}

func (r *LineReporter) Start(job *Job) {
	r.mu.Lock()
	r.active++
	r.mu.Unlock()
	r.redraw()
}

// BytesDone records job's running total, replacing its previous entry
// rather than accumulating, since the caller passes a cumulative count
// (spec.md §4.D "bytes_done") rather than a per-call delta.
func (r *LineReporter) BytesDone(job *Job, done, _ int64) {
	r.mu.Lock()
	r.bytesByJob[job.ID] = done
	r.mu.Unlock()
	r.redraw()
}

func (r *LineReporter) Finish(job *Job) {
	r.mu.Lock()
	r.active--
	r.done++
	delete(r.bytesByJob, job.ID)
	r.mu.Unlock()
	r.redraw()
}

func (r *LineReporter) redraw() {
	width := terminalWidth()
	r.mu.Lock()
	var bytes int64
	for _, b := range r.bytesByJob {
		bytes += b
	}
	line := fmt.Sprintf("\r%d/%d done, %d in flight, %d bytes", r.done, r.total, r.active, bytes)
	r.mu.Unlock()
	if len(line) > width {
		line = line[:width]
	}
	fmt.Fprint(r.out, line)
}

// terminalWidth reports stderr's width, falling back to 80 columns when
// it isn't a terminal (redirected to a file, piped, CI).
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
