package correlate

import (
	"context"
	"fmt"
	"strings"

	"github.com/evidence-toolkit/evitool/internal/llm"
	"github.com/evidence-toolkit/evitool/internal/prompts"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// detectLegalPatterns feeds the LLM a structured digest of the case's
// entity clusters, timeline skeleton, and quoted-statement excerpts, and
// asks for contradictions, corroboration, and evidence gaps. It is
// entirely optional: it returns nil without a call when d.LLM is nil, and any error
// here degrades to a nil result rather than failing the correlation run.
func detectLegalPatterns(ctx context.Context, d Deps, caseID string, entities []schema.CorrelatedEntity, events []schema.TimelineEvent, analyses []*schema.UnifiedAnalysis) (*schema.LegalPatternAnalysis, error) {
	if d.LLM == nil {
		return nil, nil
	}

	p, err := d.Prompts.Get(prompts.DomainCorrelation, "")
	if err != nil {
		return nil, err
	}

	prompt, err := prompts.FullPrompt(p, map[string]interface{}{
		"CaseID":                caseID,
		"EntityDigest":          entityDigest(entities),
		"TimelineDigest":        timelineDigest(events),
		"QuotedStatementDigest": quotedStatementDigest(analyses),
	})
	if err != nil {
		return nil, err
	}

	res, err := d.LLM.Complete(ctx, llm.Request{
		Prompt:      prompt,
		SchemaName:  "legal_pattern_analysis",
		Schema:      legalPatternSchema(),
		Temperature: 0,
	})
	if err != nil {
		return nil, err
	}

	var lp schema.LegalPatternAnalysis
	if err := llm.ParseInto(res, &lp); err != nil {
		return nil, err
	}
	return &lp, nil
}

func entityDigest(entities []schema.CorrelatedEntity) string {
	if len(entities) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, e := range entities {
		fmt.Fprintf(&sb, "- %s (%s), seen in %d items\n", e.EntityName, e.EntityType, e.OccurrenceCount)
	}
	return sb.String()
}

func timelineDigest(events []schema.TimelineEvent) string {
	if len(events) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, e := range events {
		fmt.Fprintf(&sb, "- %s [%s] %s: %s\n", e.Timestamp.Format("2006-01-02T15:04:05Z07:00"), e.EvidenceSHA256[:8], e.EventType, e.Description)
	}
	return sb.String()
}

func quotedStatementDigest(analyses []*schema.UnifiedAnalysis) string {
	var sb strings.Builder
	any := false
	for _, ua := range analyses {
		if ua.DocumentAnalysis == nil {
			continue
		}
		for _, e := range ua.DocumentAnalysis.Entities {
			if !e.QuotedText.Present {
				continue
			}
			any = true
			fmt.Fprintf(&sb, "- %s [%s]: %q\n", e.Name, ua.Metadata.SHA256[:8], e.QuotedText.Value)
		}
	}
	if !any {
		return "(none)"
	}
	return sb.String()
}

func legalPatternSchema() map[string]interface{} {
	contradiction := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"description", "evidence_sha256s", "severity", "confidence"},
		"properties": map[string]interface{}{
			"description":     map[string]interface{}{"type": "string"},
			"evidence_sha256s": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"severity":        map[string]interface{}{"type": "number"},
			"confidence":      map[string]interface{}{"type": "number"},
		},
	}
	corroboration := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"description", "evidence_sha256s", "confidence"},
		"properties": map[string]interface{}{
			"description":     map[string]interface{}{"type": "string"},
			"evidence_sha256s": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"confidence":      map[string]interface{}{"type": "number"},
		},
	}
	evidenceGap := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"description", "confidence"},
		"properties": map[string]interface{}{
			"description": map[string]interface{}{"type": "string"},
			"confidence":  map[string]interface{}{"type": "number"},
		},
	}

	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"contradictions", "corroboration", "evidence_gaps", "pattern_summary", "confidence"},
		"properties": map[string]interface{}{
			"contradictions":  map[string]interface{}{"type": "array", "items": contradiction},
			"corroboration":   map[string]interface{}{"type": "array", "items": corroboration},
			"evidence_gaps":   map[string]interface{}{"type": "array", "items": evidenceGap},
			"pattern_summary": map[string]interface{}{"type": "string"},
			"confidence":      map[string]interface{}{"type": "number"},
		},
	}
}
