// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the mapping engine.
//
// The package is intentionally minimal:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems live in subpackages (prompush, datadog), so the
//     engine depends only on this interface.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the engine.
const (
	OpTotal           = "ormlite_op_total"
	OpDurationSeconds = "ormlite_op_duration_seconds"
	RowsTotal         = "ormlite_rows_total"
)

// Row kinds reported through RecordRows.
const (
	RowsHydrated = "hydrated"
	RowsAffected = "affected"
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

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Reset restores the no-op backend.
func Reset() {
	mu.Lock()
	backend = nopBackend{}
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordOp measures latency and success/failure of one engine operation
// (e.g. "select", "exec", "ensure_schema") against a table. table may be
// empty for raw statements.
func RecordOp(op, table string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"op":     op,
		"table":  table,
		"status": status,
	}

	b := current()
	b.IncCounter(OpTotal, 1, lbls)
	b.ObserveHistogram(OpDurationSeconds, d.Seconds(), lbls)
}

// RecordRows increments the row counter for the given table and kind
// (RowsHydrated, RowsAffected).
func RecordRows(table, kind string, n int64) {
	if n <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(n), Labels{
		"table": table,
		"kind":  kind,
	})
}
