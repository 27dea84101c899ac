package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordMonitor struct {
	errs    []error
	tags    map[string]string
	panics  []any
	flushed time.Duration
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = tags
}
func (r *recordMonitor) Recover()              {}
func (r *recordMonitor) Flush(d time.Duration) { r.flushed = d }
func (r *recordMonitor) ReportPanic(v any)     { r.panics = append(r.panics, v) }

func TestCaptureBuildsTags(t *testing.T) {
	mon := &recordMonitor{}
	Init(mon)
	defer Init(NopMonitor{})

	Capture(errors.New("boom"), "command", "allocate", "source", "in.xlsx", "dangling")
	require.Len(t, mon.errs, 1)
	assert.Equal(t, map[string]string{"command": "allocate", "source": "in.xlsx"}, mon.tags)

	Capture(nil, "command", "allocate")
	CaptureException(nil, nil)
	assert.Len(t, mon.errs, 1)

	Flush(time.Second)
	assert.Equal(t, time.Second, mon.flushed)
	assert.Same(t, mon, Current())
}

func TestInitIgnoresNil(t *testing.T) {
	Init(nil)
	assert.Equal(t, NopMonitor{}, Current())
}

func TestRecoverReportsAndRepanics(t *testing.T) {
	mon := &recordMonitor{}
	Init(mon)
	defer Init(NopMonitor{})

	assert.PanicsWithValue(t, "bad", func() {
		defer Recover()
		panic("bad")
	})
	assert.Equal(t, []any{"bad"}, mon.panics)
}
