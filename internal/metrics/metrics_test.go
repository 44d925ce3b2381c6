package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *Metrics {
	return NewWithRegisterer(prometheus.NewRegistry())
}

func TestObserveStage_IncrementsTotalByOutcome(t *testing.T) {
	m := newTestMetrics()
	m.ObserveStage("ingest", "success", 0.5)
	m.ObserveStage("ingest", "success", 1.2)
	m.ObserveStage("ingest", "fatal", 0.1)

	require.Equal(t, float64(2), testutil.ToFloat64(m.StageTotal.WithLabelValues("ingest", "success")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.StageTotal.WithLabelValues("ingest", "fatal")))
}

func TestRecordLLMCall_SkipsZeroTokenCounters(t *testing.T) {
	m := newTestMetrics()
	m.RecordLLMCall("document", "ok", 0, 0)

	require.Equal(t, float64(1), testutil.ToFloat64(m.LLMCalls.WithLabelValues("document", "ok")))
	require.Equal(t, float64(0), testutil.ToFloat64(m.LLMTokens.WithLabelValues("document", "prompt")))
}

func TestRecordLLMCall_AccumulatesTokens(t *testing.T) {
	m := newTestMetrics()
	m.RecordLLMCall("email", "ok", 100, 40)
	m.RecordLLMCall("email", "ok", 50, 20)

	require.Equal(t, float64(150), testutil.ToFloat64(m.LLMTokens.WithLabelValues("email", "prompt")))
	require.Equal(t, float64(60), testutil.ToFloat64(m.LLMTokens.WithLabelValues("email", "completion")))
}

func TestRecordCacheLookup_LabelsHitAndMiss(t *testing.T) {
	m := newTestMetrics()
	m.RecordCacheLookup("local", true)
	m.RecordCacheLookup("local", false)
	m.RecordCacheLookup("local", false)

	require.Equal(t, float64(1), testutil.ToFloat64(m.CacheHits.WithLabelValues("local", "hit")))
	require.Equal(t, float64(2), testutil.ToFloat64(m.CacheHits.WithLabelValues("local", "miss")))
}

func TestSetDLQDepth_RecordsGaugeValue(t *testing.T) {
	m := newTestMetrics()
	m.SetDLQDepth("case-1", 3)
	require.Equal(t, float64(3), testutil.ToFloat64(m.DLQDepth.WithLabelValues("case-1")))

	m.SetDLQDepth("case-1", 1)
	require.Equal(t, float64(1), testutil.ToFloat64(m.DLQDepth.WithLabelValues("case-1")))
}
