package transfer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineReporterTracksBytesPerJob(t *testing.T) {
	var buf bytes.Buffer
	r := &LineReporter{out: &buf, total: 2, bytesByJob: make(map[string]int64)}

	j1 := NewJob(Download, "", "", "a", "", false)
	j2 := NewJob(Upload, "", "", "b", "", false)

	r.Start(j1)
	r.Start(j2)
	r.BytesDone(j1, 10, 100)
	r.BytesDone(j2, 20, 100)
	r.Finish(j1)
	r.Finish(j2)

	assert.Equal(t, 2, r.done)
	assert.Equal(t, 0, r.active)
	assert.Empty(t, r.bytesByJob)
	assert.NotEmpty(t, buf.String())
}

// NewReporter falls back to NopReporter under `go test`, where stderr
// is never a terminal.
func TestNewReporterFallsBackWhenNotATerminal(t *testing.T) {
	_, ok := NewReporter(3).(*LineReporter)
	assert.False(t, ok)
}
