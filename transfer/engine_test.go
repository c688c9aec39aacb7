package transfer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineRunRespectsMaxInFlight(t *testing.T) {
	var current, max int32
	var mu sync.Mutex

	jobs := make([]*Job, 20)
	for i := range jobs {
		jobs[i] = NewJob(Upload, "", "", "f", "", false).WithExec(func(ctx context.Context, j *Job) error {
			n := atomic.AddInt32(&current, 1)
			mu.Lock()
			if n > max {
				max = n
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return nil
		})
	}

	e := NewEngine(Config{MaxInFlight: 3, BufferBytes: 1024}, nil)
	results := e.Run(context.Background(), jobs)

	require.Len(t, results, 20)
	for _, r := range results {
		assert.Equal(t, Done, r.Status)
	}
	assert.LessOrEqual(t, int(max), 3)
}

func TestEngineRunSortsByRelativePath(t *testing.T) {
	jobs := []*Job{
		NewJob(Download, "", "", "zzz", "", false).WithExec(noop),
		NewJob(Download, "", "", "aaa", "", false).WithExec(noop),
		NewJob(Download, "", "", "mmm", "", false).WithExec(noop),
	}
	e := NewEngine(DefaultConfig(), nil)
	results := e.Run(context.Background(), jobs)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"aaa", "mmm", "zzz"}, []string{results[0].RelativePath, results[1].RelativePath, results[2].RelativePath})
}

func TestEngineRunRecordsPerJobFailureWithoutAbortingBatch(t *testing.T) {
	boom := errors.New("boom")
	jobs := []*Job{
		NewJob(Upload, "", "", "a", "", false).WithExec(noop),
		NewJob(Upload, "", "", "b", "", false).WithExec(func(context.Context, *Job) error { return boom }),
		NewJob(Upload, "", "", "c", "", false).WithExec(noop),
	}
	e := NewEngine(DefaultConfig(), nil)
	results := e.Run(context.Background(), jobs)
	require.Len(t, results, 3)

	var failed, done int
	for _, r := range results {
		switch r.Status {
		case Failed:
			failed++
			assert.ErrorIs(t, r.Err, boom)
		case Done:
			done++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, done)
}

func TestEngineRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []*Job{NewJob(Upload, "", "", "a", "", false).WithExec(noop)}
	e := NewEngine(DefaultConfig(), nil)
	results := e.Run(ctx, jobs)

	require.Len(t, results, 1)
	assert.Equal(t, Failed, results[0].Status)
	assert.ErrorIs(t, results[0].Err, ErrCancelled)
}

func TestJobPreCheckSkipsIdenticalDownload(t *testing.T) {
	j := NewJob(Download, "", "", "f", "abc", false)
	assert.True(t, j.PreCheck(true, 10, "abc", true, 10))
	assert.False(t, j.PreCheck(false, 10, "abc", true, 10))
}

func TestJobPreCheckFallsBackToSizeWithoutRemoteMD5(t *testing.T) {
	j := NewJob(Download, "", "", "f", "", false)
	assert.True(t, j.PreCheck(true, 10, "", false, 10))
	assert.False(t, j.PreCheck(true, 10, "", false, 11))
}

func TestJobPreCheckDisabledByOverwrite(t *testing.T) {
	j := NewJob(Download, "", "", "f", "abc", true)
	assert.False(t, j.PreCheck(true, 10, "abc", true, 10))
}

func noop(context.Context, *Job) error { return nil }
