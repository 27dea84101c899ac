package metrics

import "time"

// RunEvent summarises one completed allocation run.
type RunEvent struct {
	RunID       string
	Source      string
	Capacity    int
	Projects    int
	Requested   int
	Allocated   int
	Unallocated int
	Shortfalls  int
	Warnings    int
	YearTotals  map[int]int
	Duration    time.Duration
	Time        time.Time
}

// MetricsSink records allocation runs for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// LoadFailure describes an input that could not be allocated at all.
type LoadFailure struct {
	Source string
	Kind   string
	Time   time.Time
}

// FailureRecorder is implemented by sinks that count failed runs.
type FailureRecorder interface {
	RecordFailure(ev LoadFailure) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error         { return nil }
func (NopSink) RecordFailure(LoadFailure) error { return nil }
