// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from suite runs.
//
// It exposes a narrow Backend interface focused on counters and timing data,
// with a global pluggable backend that defaults to a no-op implementation, so
// metrics are always safe to call even when no real backend is configured.
// Concrete metric systems live in subpackages (prompush, datadog).
package metrics

import "time"

// Metric names emitted by this package.
const (
	CheckTotal           = "dataval_check_total"
	CheckDurationSeconds = "dataval_check_duration_seconds"
	DiagnosticsTotal     = "dataval_diagnostics_total"
	LoadTotal            = "dataval_load_total"
	LoadDurationSeconds  = "dataval_load_duration_seconds"
)

// Check statuses.
const (
	StatusPass  = "pass"
	StatusFail  = "fail"
	StatusError = "error"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordCheck counts one check execution and its latency.
// status is one of StatusPass, StatusFail, StatusError.
func RecordCheck(suite, dataset, check, status string, d time.Duration) {
	lbls := Labels{
		"suite":   suite,
		"dataset": dataset,
		"check":   check,
		"status":  status,
	}
	backend.IncCounter(CheckTotal, 1, lbls)
	backend.ObserveHistogram(CheckDurationSeconds, d.Seconds(), lbls)
}

// RecordDiagnostics adds the number of column-type diagnostics a check
// produced.
func RecordDiagnostics(suite, dataset string, delta int) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(DiagnosticsTotal, float64(delta), Labels{
		"suite":   suite,
		"dataset": dataset,
	})
}

// RecordLoad measures loading one dataset from its source.
func RecordLoad(suite, source string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"suite":  suite,
		"source": source,
		"status": status,
	}
	backend.IncCounter(LoadTotal, 1, lbls)
	backend.ObserveHistogram(LoadDurationSeconds, d.Seconds(), lbls)
}
