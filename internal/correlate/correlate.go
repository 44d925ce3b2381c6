// Package correlate implements the cross-evidence correlation analyzer
// (C4): entity canonicalisation and clustering, timeline reconstruction,
// temporal-sequence and timeline-gap detection, and optional
// LLM-assisted legal-pattern detection, over every analysis already on
// file for a case.
package correlate

import (
	"context"
	"time"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/llm"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/prompts"
	"github.com/evidence-toolkit/evitool/internal/schema"
	"github.com/evidence-toolkit/evitool/internal/store"
)

// Deps bundles the correlator's collaborators. LLM may be nil: legal
// pattern detection and AI-assisted entity resolution are both optional
// and are skipped (not failed) without a backend configured.
type Deps struct {
	Store       *store.Store
	LLM         *llm.Client
	Prompts     *prompts.Registry
	Log         *logging.Logger
	TemporalWindowHours int
	GapThresholdHours   int
	GapHighHours        int
	GapMediumHours      int
	ResolveEntities     bool
	DetectPatterns      bool
}

const schemaVersion = "1.0.0"

// Correlate reads every UnifiedAnalysis on file for caseID and produces
// the case's CorrelationAnalysis. It is idempotent for an unchanged
// snapshot of on-disk analyses (spec §4.4).
func Correlate(ctx context.Context, d Deps, caseID string) (*schema.CorrelationAnalysis, error) {
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
	var skipped []schema.SHA256Hex
	for _, h := range hashes {
		ua, err := d.Store.GetAnalysis(h)
		if err != nil {
			d.Log.Warn("skipping hash with no usable analysis", "sha256", h, "error", err)
			skipped = append(skipped, h)
			continue
		}
		if ua == nil {
			skipped = append(skipped, h)
			continue
		}
		analyses = append(analyses, ua)
	}

	clusters := collectEntities(analyses)
	if d.ResolveEntities {
		clusters = resolveAmbiguousClusters(ctx, d, clusters)
	}
	entities := buildCorrelatedEntities(clusters)

	events := buildTimeline(analyses)
	anchors := buildAnchorContexts(analyses)

	windowHours := d.TemporalWindowHours
	if windowHours <= 0 {
		windowHours = 72
	}
	gapThreshold := d.GapThresholdHours
	if gapThreshold <= 0 {
		gapThreshold = 168
	}
	gapHigh := d.GapHighHours
	if gapHigh <= 0 {
		gapHigh = 720
	}
	gapMedium := d.GapMediumHours
	if gapMedium <= 0 {
		gapMedium = 336
	}

	sequences := buildTemporalSequences(events, anchors, windowHours)
	gaps := buildTimelineGaps(events, gapThreshold, gapHigh, gapMedium)

	var legalPatterns *schema.LegalPatternAnalysis
	if d.DetectPatterns {
		lp, err := detectLegalPatterns(ctx, d, caseID, entities, events, analyses)
		if err != nil {
			d.Log.Warn("legal pattern detection failed, continuing without it", "error", err)
		} else {
			legalPatterns = lp
		}
	}

	result := &schema.CorrelationAnalysis{
		SchemaVersion:      schemaVersion,
		CaseID:             caseID,
		EvidenceCount:      len(analyses),
		CorrelatedEntities: entities,
		TimelineEvents:     events,
		TemporalSequences:  sequences,
		TimelineGaps:       gaps,
		LegalPatterns:      legalPatterns,
		AnalysisTimestamp:  analysisTimestamp(),
		SkippedHashes:      skipped,
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// analysisTimestamp is split out so a future caller can inject a fixed
// clock in tests without reaching for a package-level time.Now wrapper
// anywhere else in the correlator.
func analysisTimestamp() time.Time {
	return time.Now().UTC()
}
