// Package aggregate implements the case aggregator (C5): it re-reads
// every per-item analysis on file for a case (not the correlation
// result) and builds the overall_assessment mapping the report
// generators render from, plus an optional executive summary.
package aggregate

import (
	"context"
	"sort"
	"time"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/llm"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/prompts"
	"github.com/evidence-toolkit/evitool/internal/schema"
	"github.com/evidence-toolkit/evitool/internal/store"
)

// Deps bundles the aggregator's collaborators. LLM may be nil: the
// executive summary step is skipped (not failed) without one.
type Deps struct {
	Store          *store.Store
	LLM            *llm.Client
	Prompts        *prompts.Registry
	Log            *logging.Logger
	ChunkThreshold int
	ChunkSize      int
}

const schemaVersion = "1.0.0"

// Aggregate builds the CaseSummary for caseID: the correlation result
// (embedded as passed in by the caller; Aggregate does not recompute
// it), the overall_assessment aggregates, and the executive summary. It is a pure function of on-disk state for a given
// case id, modulo timestamps (spec §4.5).
func Aggregate(ctx context.Context, d Deps, caseID, caseType string, correlation schema.CorrelationAnalysis) (*schema.CaseSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, evierrors.CancelRequestedErr()
	}
	if caseID == "" {
		return nil, evierrors.SchemaValidationErr("case id must not be empty")
	}

	hashes, err := d.Store.ListCase(caseID)
	if err != nil {
		return nil, err
	}

	var analyses []*schema.UnifiedAnalysis
	var evidence []schema.EvidenceSummary
	evidenceTypeSet := map[schema.EvidenceType]bool{}
	for _, h := range hashes {
		ua, err := d.Store.GetAnalysis(h)
		if err != nil {
			d.Log.Warn("skipping hash with no usable analysis", "sha256", h, "error", err)
			continue
		}
		if ua == nil {
			continue
		}
		analyses = append(analyses, ua)
		evidence = append(evidence, schema.EvidenceSummary{
			SHA256:       ua.Metadata.SHA256,
			EvidenceType: ua.EvidenceType,
			Filename:     ua.Metadata.Filename,
		})
		evidenceTypeSet[ua.EvidenceType] = true
	}

	oa := schema.OverallAssessment{
		QuotedStatements:       buildQuotedStatements(analyses),
		CommunicationPatterns:  buildCommunicationPatterns(analyses),
		PowerDynamics:          buildPowerDynamics(analyses),
		ImageOCR:               buildImageOCRAggregate(analyses),
		SemanticTimelineEvents: semanticTimelineEvents(correlation.TimelineEvents),
		RelationshipNetwork:    buildRelationshipNetwork(ctx, d, analyses),
	}
	execSummary := buildExecutiveSummary(ctx, d, caseID, caseType, evidence, oa)

	summary := &schema.CaseSummary{
		SchemaVersion:       schemaVersion,
		CaseID:              caseID,
		GenerationTimestamp: time.Now().UTC(),
		EvidenceCount:       len(analyses),
		EvidenceTypes:       sortedEvidenceTypes(evidenceTypeSet),
		Evidence:            evidence,
		Correlation:         correlation,
		OverallAssessment:   oa,
		ExecutiveSummary:    execSummary,
	}

	if err := summary.Validate(); err != nil {
		return nil, err
	}
	return summary, nil
}

// semanticTimelineEvents re-exports document_date_reference/semantic_event
// entries from the correlator's timeline for convenience (spec §4.5).
func semanticTimelineEvents(events []schema.TimelineEvent) []schema.TimelineEvent {
	var out []schema.TimelineEvent
	for _, e := range events {
		if e.EventType == schema.EventDocumentDateReference || e.EventType == schema.EventSemanticEvent {
			out = append(out, e)
		}
	}
	return out
}

func sortedEvidenceTypes(set map[schema.EvidenceType]bool) []schema.EvidenceType {
	var out []schema.EvidenceType
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
