package correlate

import (
	"sort"
	"time"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

// anchorContext holds the fields of one source analysis that decide
// anchor status; buildAnchorContexts keys them by evidence_sha256 so the
// sequence builder can classify each timeline event's source analysis
// without re-walking the whole analyses slice.
type anchorContext struct {
	legalSignificance schema.LegalSignificance
	commPattern       schema.CommunicationPattern
	riskFlags         map[schema.DocumentRiskFlag]bool
}

var anchorRiskFlags = map[schema.DocumentRiskFlag]bool{
	schema.RiskRetaliationIndicators: true,
	schema.RiskHarassment:            true,
	schema.RiskDiscrimination:        true,
	schema.RiskThreatening:           true,
}

func buildAnchorContexts(analyses []*schema.UnifiedAnalysis) map[schema.SHA256Hex]anchorContext {
	out := map[schema.SHA256Hex]anchorContext{}
	for _, ua := range analyses {
		ctx := anchorContext{riskFlags: map[schema.DocumentRiskFlag]bool{}}
		switch {
		case ua.DocumentAnalysis != nil:
			ctx.legalSignificance = ua.DocumentAnalysis.LegalSignificance
			for _, f := range ua.DocumentAnalysis.RiskFlags {
				ctx.riskFlags[f] = true
			}
		case ua.EmailAnalysis != nil:
			ctx.legalSignificance = ua.EmailAnalysis.LegalSignificance
			ctx.commPattern = ua.EmailAnalysis.CommunicationPattern
			for _, f := range ua.EmailAnalysis.RiskFlags {
				ctx.riskFlags[f] = true
			}
		}
		out[ua.Metadata.SHA256] = ctx
	}
	return out
}

// isAnchor reports whether an event's source analysis qualifies it as a
// temporal-sequence anchor per spec §4.4.
func isAnchor(ctx anchorContext) bool {
	if ctx.legalSignificance == schema.SignificanceHigh || ctx.legalSignificance == schema.SignificanceCritical {
		return true
	}
	switch ctx.commPattern {
	case schema.CommHostile, schema.CommRetaliatory, schema.CommEscalating:
		return true
	}
	for flag := range ctx.riskFlags {
		if anchorRiskFlags[flag] {
			return true
		}
	}
	return false
}

// buildTemporalSequences clusters every anchor event with the events
// within windowHours of it, then merges sequences that share any event.
func buildTemporalSequences(events []schema.TimelineEvent, anchors map[schema.SHA256Hex]anchorContext, windowHours int) []schema.TemporalSequence {
	window := time.Duration(windowHours) * time.Hour

	var sequences []schema.TemporalSequence
	for _, anchor := range events {
		if !isAnchor(anchors[anchor.EvidenceSHA256]) {
			continue
		}
		var members []schema.TimelineEvent
		for _, e := range events {
			delta := e.Timestamp.Sub(anchor.Timestamp)
			if delta < 0 {
				delta = -delta
			}
			if delta <= window {
				members = append(members, e)
			}
		}
		sequences = append(sequences, schema.TemporalSequence{
			AnchorEvent:       anchor,
			Events:            members,
			LegalSignificance: sequenceSignificance(members, anchors),
		})
	}

	return mergeSequences(sequences, anchors)
}

// mergeSequences repeatedly unions any two sequences that share an event
// (by sha256+event_type+timestamp identity) until no more merges apply.
func mergeSequences(sequences []schema.TemporalSequence, anchors map[schema.SHA256Hex]anchorContext) []schema.TemporalSequence {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(sequences); i++ {
			for j := i + 1; j < len(sequences); j++ {
				if !sharesEvent(sequences[i], sequences[j]) {
					continue
				}
				sequences[i].Events = unionEvents(sequences[i].Events, sequences[j].Events)
				sequences[i].LegalSignificance = sequenceSignificance(sequences[i].Events, anchors)
				sequences = append(sequences[:j], sequences[j+1:]...)
				changed = true
				break
			}
			if changed {
				break
			}
		}
	}
	return sequences
}

func sharesEvent(a, b schema.TemporalSequence) bool {
	for _, ea := range a.Events {
		for _, eb := range b.Events {
			if eventKey(ea) == eventKey(eb) {
				return true
			}
		}
	}
	return false
}

func eventKey(e schema.TimelineEvent) string {
	return string(e.EvidenceSHA256) + "|" + string(e.EventType) + "|" + e.Timestamp.Format(time.RFC3339Nano)
}

func unionEvents(a, b []schema.TimelineEvent) []schema.TimelineEvent {
	seen := map[string]bool{}
	var out []schema.TimelineEvent
	for _, e := range append(append([]schema.TimelineEvent{}, a...), b...) {
		k := eventKey(e)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// sequenceSignificance implements spec §4.4's "high if any constituent
// event is high/critical, else medium if any has risk flags, else low".
func sequenceSignificance(events []schema.TimelineEvent, anchors map[schema.SHA256Hex]anchorContext) schema.LegalSignificance {
	anyRisk := false
	for _, e := range events {
		ctx := anchors[e.EvidenceSHA256]
		if ctx.legalSignificance == schema.SignificanceHigh || ctx.legalSignificance == schema.SignificanceCritical {
			return schema.SignificanceHigh
		}
		if len(ctx.riskFlags) > 0 {
			anyRisk = true
		}
	}
	if anyRisk {
		return schema.SignificanceMedium
	}
	return schema.SignificanceLow
}

// buildTimelineGaps computes deltas between successive events, excluding
// file_created and analysis_performed (spec §4.4), and reports a gap
// whenever the delta is at or above gapThresholdHours.
func buildTimelineGaps(events []schema.TimelineEvent, gapThresholdHours, gapHighHours, gapMediumHours int) []schema.TimelineGap {
	var filtered []schema.TimelineEvent
	for _, e := range events {
		if e.EventType == schema.EventFileCreated || e.EventType == schema.EventAnalysisPerformed {
			continue
		}
		filtered = append(filtered, e)
	}

	threshold := time.Duration(gapThresholdHours) * time.Hour
	var gaps []schema.TimelineGap
	for i := 1; i < len(filtered); i++ {
		before, after := filtered[i-1], filtered[i]
		delta := after.Timestamp.Sub(before.Timestamp)
		if delta < threshold {
			continue
		}
		hours := delta.Hours()
		gaps = append(gaps, schema.TimelineGap{
			GapStart:           before.Timestamp,
			GapEnd:             after.Timestamp,
			DurationHours:      schema.Round4(hours),
			Significance:       gapSignificance(hours, gapHighHours, gapMediumHours),
			BeforeEventSummary: before.Description,
			AfterEventSummary:  after.Description,
		})
	}
	return gaps
}

func gapSignificance(hours float64, highHours, mediumHours int) schema.LegalSignificance {
	switch {
	case hours >= float64(highHours):
		return schema.SignificanceHigh
	case hours >= float64(mediumHours):
		return schema.SignificanceMedium
	default:
		return schema.SignificanceLow
	}
}
