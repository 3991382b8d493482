package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder_Safe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveWheelBuildDuration("legacy", time.Second)
	r.ObserveRunDuration(time.Second)
	r.IncRequirementOutcome(OutcomeBuilt)
	r.IncCacheDirKind(true)
}

func TestPrometheusRecorder_Counts(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.IncRequirementOutcome(OutcomeBuilt)
	r.IncRequirementOutcome(OutcomeBuilt)
	r.IncRequirementOutcome(OutcomeFailed)
	r.IncCacheDirKind(true)
	r.IncCacheDirKind(false)
	r.ObserveWheelBuildDuration("legacy", 250*time.Millisecond)
	r.ObserveRunDuration(time.Second)

	built := testutil.ToFloat64(r.outcomes.WithLabelValues(string(OutcomeBuilt)))
	require.Equal(t, 2.0, built)
	failed := testutil.ToFloat64(r.outcomes.WithLabelValues(string(OutcomeFailed)))
	require.Equal(t, 1.0, failed)

	persistent := testutil.ToFloat64(r.cacheDirKind.WithLabelValues("persistent"))
	require.Equal(t, 1.0, persistent)
}

func TestPrometheusRecorder_NilReceiverSafe(t *testing.T) {
	var r *PrometheusRecorder
	r.ObserveWheelBuildDuration("legacy", time.Second)
	r.IncRequirementOutcome(OutcomeBuilt)
	r.IncCacheDirKind(false)
	r.ObserveRunDuration(time.Second)
}
