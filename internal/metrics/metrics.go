// Package metrics is a minimal facade between the pipeline and whatever
// metrics backend a run configures. The core stages call the package-level
// functions; with no backend set they are no-ops with near-zero cost.
package metrics

import "sync/atomic"

// Labels attach low-cardinality dimensions to a metric sample.
type Labels map[string]string

// Backend receives metric samples. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Metric names emitted by the pipeline.
const (
	StageTotal           = "pipeline_stage_total"
	StageDurationSeconds = "pipeline_stage_duration_seconds"
	RecordsTotal         = "pipeline_records_total"
)

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}

// backendHolder gives atomic.Value a single concrete type to store,
// regardless of the Backend implementation inside.
type backendHolder struct{ b Backend }

var current atomic.Value // backendHolder

func init() {
	current.Store(backendHolder{nopBackend{}})
}

// SetBackend installs the process-wide backend. Passing nil restores the
// no-op backend.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	current.Store(backendHolder{b})
}

func backend() Backend {
	return current.Load().(backendHolder).b
}

// IncCounter adds delta to a counter on the installed backend.
func IncCounter(name string, delta float64, labels Labels) {
	backend().IncCounter(name, delta, labels)
}

// ObserveHistogram records one sample on the installed backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	backend().ObserveHistogram(name, value, labels)
}
