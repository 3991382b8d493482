package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	wheelBuildDuration *prom.HistogramVec
	runDuration        prom.Histogram
	outcomes           *prom.CounterVec
	cacheDirKind       *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		wheelBuildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "wheelsmith",
			Name:      "wheel_build_duration_seconds",
			Help:      "Duration of individual wheel builds by protocol",
			Buckets:   prom.DefBuckets,
		}, []string{"protocol"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "wheelsmith",
			Name:      "run_duration_seconds",
			Help:      "Total batch run duration",
			Buckets:   prom.DefBuckets,
		}),
		outcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "wheelsmith",
			Name:      "requirement_outcomes_total",
			Help:      "Per-requirement outcomes by final status",
		}, []string{"outcome"}),
		cacheDirKind: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "wheelsmith",
			Name:      "cache_dir_kind_total",
			Help:      "Output directory resolutions by cache kind",
		}, []string{"kind"}),
	}
	reg.MustRegister(pr.wheelBuildDuration, pr.runDuration, pr.outcomes, pr.cacheDirKind)
	return pr
}

func (p *PrometheusRecorder) ObserveWheelBuildDuration(protocol string, d time.Duration) {
	if p == nil || p.wheelBuildDuration == nil {
		return
	}
	p.wheelBuildDuration.WithLabelValues(protocol).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRequirementOutcome(outcome OutcomeLabel) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncCacheDirKind(persistent bool) {
	if p == nil || p.cacheDirKind == nil {
		return
	}
	kind := "ephemeral"
	if persistent {
		kind = "persistent"
	}
	p.cacheDirKind.WithLabelValues(kind).Inc()
}
