// Package metrics is a small, backend-agnostic abstraction for recording
// operational metrics from the build and chart stages.
//
// It exposes a narrow interface (Backend) for counters and timings and a
// global, pluggable backend that defaults to a no-op implementation, so
// recording is always safe even when no metrics system is configured.
// Concrete systems live in subpackages (prompush, datadog).
package metrics

import "time"

// Metric names shared by every backend.
const (
	StepTotal    = "dataco_step_total"
	StepDuration = "dataco_step_duration_seconds"
	RowsTotal    = "dataco_rows_total"
	FilesTotal   = "dataco_files_written_total"
)

// Pipeline steps.
const (
	StepLoad      = "load"
	StepTransform = "transform"
	StepPersist   = "persist"
	StepAggregate = "aggregate"
	StepExport    = "export"
	StepRender    = "render"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

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

// RecordStep records one execution of step with its outcome and duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows adds delta to the row counter for kind, e.g. "raw", "skipped",
// "clean", "loaded". Non-positive deltas are ignored.
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordFiles adds delta to the written-artifact counter.
func RecordFiles(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(FilesTotal, float64(delta), Labels{"job": job})
}
