// Package monitoring holds the process-wide error monitor. The default is a
// no-op; infra/monitoring installs Sentry when a DSN is configured.
package monitoring

import "time"

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// Current returns the installed monitor.
func Current() Monitor { return current }

// CaptureException records the error with optional tags. Nil errors are
// ignored.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	current.CaptureException(err, tags)
}

// Capture records err with tags given as key/value pairs. A trailing key
// without value is dropped.
func Capture(err error, kv ...string) {
	if err == nil {
		return
	}
	tags := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		tags[kv[i]] = kv[i+1]
	}
	current.CaptureException(err, tags)
}

// Recover captures panics. It must be deferred directly.
func Recover() {
	if r := recover(); r != nil {
		if rec, ok := current.(PanicReporter); ok {
			rec.ReportPanic(r)
		}
		panic(r)
	}
}

// PanicReporter is implemented by monitors that can record a recovered value.
type PanicReporter interface {
	ReportPanic(v any)
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	current.Flush(d)
}
