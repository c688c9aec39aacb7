package transfer

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Config mirrors spec.md §4.D's engine configuration.
type Config struct {
	MaxInFlight int64 // default ~8
	BufferBytes int
	Overwrite   bool
}

// DefaultConfig matches the spec's stated defaults.
func DefaultConfig() Config {
	return Config{MaxInFlight: 8, BufferBytes: 64 * 1024, Overwrite: false}
}

// Exec performs the actual byte movement for one job and returns the
// observed size/md5 on success. The engine itself never touches the
// filesystem or network directly — reconcile supplies Exec, closing
// over the project root and remote.Adapter, keeping transfer free of an
// import cycle on remote/manifest.
type Exec func(ctx context.Context, job *Job) error

// Engine runs a batch of jobs with a bounded number in flight at once
// (spec.md §5 "the bounded semaphore that caps in-flight transfers"),
// generalizing bclientapi.go's SendFiles/GetFiles channel-worker loops
// from a fixed-size worker pool reading off one channel to a semaphore
// gating arbitrarily many concurrent goroutines.
type Engine struct {
	cfg      Config
	sem      *semaphore.Weighted
	reporter Reporter
}

// NewEngine builds an Engine. A nil reporter installs a no-op one.
func NewEngine(cfg Config, reporter Reporter) *Engine {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = DefaultConfig().MaxInFlight
	}
	if cfg.BufferBytes <= 0 {
		cfg.BufferBytes = DefaultConfig().BufferBytes
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Engine{
		cfg:      cfg,
		sem:      semaphore.NewWeighted(cfg.MaxInFlight),
		reporter: reporter,
	}
}

// Run drains jobs through exec, at most cfg.MaxInFlight at a time.
// Cancelling ctx aborts jobs that haven't yet started their exec call
// and marks in-flight ones Failed with ErrCancelled once exec returns
// (spec.md §5: cancellation "aborts in-flight transfers by closing
// streams"; exec is responsible for honoring ctx during its own I/O).
//
// Run never returns an error itself — per-job failures are recorded on
// each Job (spec.md §7: "per-file transfer errors in a batch do not
// abort the batch"). The caller inspects the returned slice, re-sorted
// by RelativePath for deterministic reporting (spec.md §4.E "reported
// output is re-sorted after completion").
func (e *Engine) Run(ctx context.Context, jobs []*Job) []*Job {
	var wg sync.WaitGroup
	for _, job := range jobs {
		job := job
		if ctx.Err() != nil {
			job.Status = Failed
			job.Err = ErrCancelled
			continue
		}
		if err := e.sem.Acquire(ctx, 1); err != nil {
			job.Status = Failed
			job.Err = ErrCancelled
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer e.sem.Release(1)
			e.runOne(ctx, job)
		}()
	}
	wg.Wait()

	sorted := make([]*Job, len(jobs))
	copy(sorted, jobs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RelativePath < sorted[j].RelativePath })
	return sorted
}

func (e *Engine) runOne(ctx context.Context, job *Job) {
	job.Status = InFlight
	e.reporter.Start(job)

	if err := ctx.Err(); err != nil {
		job.Status = Failed
		job.Err = ErrCancelled
		e.reporter.Finish(job)
		return
	}

	// exec is injected per-run via job-carried closures stashed by the
	// caller (see WithExec); a job with no exec attached is a
	// programming error in the caller, not a user-facing one.
	if job.exec == nil {
		job.Status = Failed
		job.Err = errors.New("transfer: job has no exec attached")
		e.reporter.Finish(job)
		return
	}

	err := job.exec(ctx, job)
	if ctx.Err() != nil {
		err = ErrCancelled
	}
	if err != nil {
		job.Status = Failed
		job.Err = err
		e.reporter.Finish(job)
		return
	}
	if job.Status != Skipped {
		job.Status = Done
	}
	e.reporter.Finish(job)
}

// WithExec attaches the function that performs this job's actual
// transfer. reconcile calls this once per job before handing the batch
// to Engine.Run.
func (j *Job) WithExec(fn Exec) *Job {
	j.exec = fn
	return j
}
