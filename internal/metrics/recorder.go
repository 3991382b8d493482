// Package metrics provides observability hooks for wheel build runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never requires nil checks in the build
// path. A Prometheus-backed implementation is activated by swapping the
// injected recorder.
package metrics

import "time"

// OutcomeLabel enumerates per-requirement build outcomes for counters.
type OutcomeLabel string

const (
	OutcomeBuilt   OutcomeLabel = "built"
	OutcomeFailed  OutcomeLabel = "failed"
	OutcomeSkipped OutcomeLabel = "skipped"
)

// Recorder defines observability hooks for wheel build metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveWheelBuildDuration(protocol string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncRequirementOutcome(outcome OutcomeLabel)
	IncCacheDirKind(persistent bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveWheelBuildDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)                {}
func (NoopRecorder) IncRequirementOutcome(OutcomeLabel)              {}
func (NoopRecorder) IncCacheDirKind(bool)                            {}
