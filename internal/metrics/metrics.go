// Package metrics exposes Prometheus counters and histograms for the
// pipeline stages the CLI records (ingest, analyze, correlate, summarise),
// grounded on the pack's internal/escrow/metrics.go use of
// prometheus/client_golang's promauto constructors and
// Record*-method-per-concern shape. The teacher itself carries no metrics
// package (the churn/co-change `internal/metrics` directory is
// domain-specific and deleted, see DESIGN.md), so this is new code rather
// than an adaptation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/histogram the pipeline records to.
type Metrics struct {
	StageDuration  *prometheus.HistogramVec
	StageTotal     *prometheus.CounterVec
	StageFailures  *prometheus.CounterVec
	LLMCalls       *prometheus.CounterVec
	LLMTokens      *prometheus.CounterVec
	DLQDepth       *prometheus.GaugeVec
	CacheHits      *prometheus.CounterVec
	EvidenceCount  *prometheus.GaugeVec
}

// New builds and registers every metric against the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer builds and registers every metric against reg. Tests
// pass a fresh prometheus.NewRegistry() so repeated calls within one test
// binary don't collide on the default registry's collector names.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "evitool_stage_duration_seconds",
				Help:    "Duration of one pipeline stage run for one case",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"}, // ingest, analyze, correlate, summarise
		),
		StageTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evitool_stage_total",
				Help: "Total stage runs, by stage and outcome",
			},
			[]string{"stage", "outcome"}, // outcome: success, partial, failure
		),
		StageFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evitool_stage_failures_total",
				Help: "Total stage failures, by stage and error kind",
			},
			[]string{"stage", "error_kind"},
		),
		LLMCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evitool_llm_calls_total",
				Help: "Total LLM calls, by analyzer domain and outcome",
			},
			[]string{"domain", "outcome"}, // outcome: success, failure
		),
		LLMTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evitool_llm_tokens_total",
				Help: "Total LLM tokens consumed, by analyzer domain and kind",
			},
			[]string{"domain", "kind"}, // kind: prompt, completion
		),
		DLQDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "evitool_dlq_depth",
				Help: "Current number of pending retry-queue entries for a case",
			},
			[]string{"case_id"},
		),
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evitool_cache_hits_total",
				Help: "Total cache lookups, by tier and outcome",
			},
			[]string{"tier", "outcome"}, // tier: cached value kind (the CLI passes "correlation"); outcome: hit, miss
		),
		EvidenceCount: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "evitool_case_evidence_count",
				Help: "Current number of evidence items in a case",
			},
			[]string{"case_id"},
		),
	}
}

// ObserveStage records a stage run's duration and outcome.
func (m *Metrics) ObserveStage(stage, outcome string, durationSeconds float64) {
	m.StageDuration.WithLabelValues(stage).Observe(durationSeconds)
	m.StageTotal.WithLabelValues(stage, outcome).Inc()
}

// RecordStageFailure records a stage failure by its error kind.
func (m *Metrics) RecordStageFailure(stage, errorKind string) {
	m.StageFailures.WithLabelValues(stage, errorKind).Inc()
}

// RecordLLMCall records one LLM call outcome and its token usage.
func (m *Metrics) RecordLLMCall(domain, outcome string, promptTokens, completionTokens int) {
	m.LLMCalls.WithLabelValues(domain, outcome).Inc()
	if promptTokens > 0 {
		m.LLMTokens.WithLabelValues(domain, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.LLMTokens.WithLabelValues(domain, "completion").Add(float64(completionTokens))
	}
}

// SetDLQDepth records the current retry-queue depth for a case.
func (m *Metrics) SetDLQDepth(caseID string, depth int) {
	m.DLQDepth.WithLabelValues(caseID).Set(float64(depth))
}

// RecordCacheLookup records a cache hit or miss for one tier.
func (m *Metrics) RecordCacheLookup(tier string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheHits.WithLabelValues(tier, outcome).Inc()
}

// SetEvidenceCount records the current evidence count for a case.
func (m *Metrics) SetEvidenceCount(caseID string, count int) {
	m.EvidenceCount.WithLabelValues(caseID).Set(float64(count))
}
