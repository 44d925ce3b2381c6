package aggregate

import (
	"context"
	"fmt"
	"strings"

	"github.com/evidence-toolkit/evitool/internal/llm"
	"github.com/evidence-toolkit/evitool/internal/prompts"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

const (
	chunkSummarySchemaName = "chunk_summary"
	execSummarySchemaName  = "executive_summary"
)

// buildExecutiveSummary implements spec §4.5's direct-vs-map-reduce
// split. A failed LLM call degrades to schema.None() rather than
// failing the whole aggregation (spec: "generators treat absent as
// skip the summary section").
func buildExecutiveSummary(ctx context.Context, d Deps, caseID, caseType string, evidence []schema.EvidenceSummary, oa schema.OverallAssessment) schema.Absent {
	if d.LLM == nil {
		return schema.None()
	}

	threshold := d.ChunkThreshold
	if threshold <= 0 {
		threshold = 30
	}
	chunkSize := d.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 30
	}

	var aggregates string
	if len(evidence) <= threshold {
		aggregates = aggregatesDigest(oa)
	} else {
		chunkSummaries, err := summarizeChunks(ctx, d, caseID, evidence, chunkSize)
		if err != nil {
			d.Log.Warn("chunk summarisation failed, skipping executive summary", "error", err)
			return schema.None()
		}
		aggregates = strings.Join(chunkSummaries, "\n\n") + "\n\n" + aggregatesDigest(oa)
	}

	text, err := callExecutiveSummary(ctx, d, caseID, caseType, len(evidence), aggregates)
	if err != nil {
		d.Log.Warn("executive summary call failed, leaving it absent", "error", err)
		return schema.None()
	}
	return schema.Some(text)
}

// summarizeChunks slices evidence into chunkSize-sized groups and
// summarises each independently (spec §4.5's map step).
func summarizeChunks(ctx context.Context, d Deps, caseID string, evidence []schema.EvidenceSummary, chunkSize int) ([]string, error) {
	chunkCount := (len(evidence) + chunkSize - 1) / chunkSize

	p, err := d.Prompts.Get(prompts.DomainExecutiveSummary, "chunk_summary")
	if err != nil {
		return nil, err
	}

	var summaries []string
	for i := 0; i < chunkCount; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(evidence) {
			end = len(evidence)
		}
		chunk := evidence[start:end]

		prompt, err := prompts.FullPrompt(p, map[string]interface{}{
			"CaseID":     caseID,
			"ChunkIndex": i + 1,
			"ChunkCount": chunkCount,
			"ChunkDigest": evidenceDigest(chunk),
		})
		if err != nil {
			return nil, err
		}

		res, err := d.LLM.Complete(ctx, llm.Request{
			Prompt:      prompt,
			SchemaName:  chunkSummarySchemaName,
			Schema:      chunkSummarySchema(),
			Temperature: 0,
		})
		if err != nil {
			return nil, err
		}
		var out struct {
			Summary string `json:"summary"`
		}
		if err := llm.ParseInto(res, &out); err != nil {
			return nil, err
		}
		summaries = append(summaries, fmt.Sprintf("Chunk %d/%d: %s", i+1, chunkCount, out.Summary))
	}
	return summaries, nil
}

func callExecutiveSummary(ctx context.Context, d Deps, caseID, caseType string, evidenceCount int, aggregates string) (string, error) {
	p, err := d.Prompts.Get(prompts.DomainExecutiveSummary, caseType)
	if err != nil {
		return "", err
	}
	prompt, err := prompts.FullPrompt(p, map[string]interface{}{
		"CaseID":        caseID,
		"EvidenceCount": evidenceCount,
		"Aggregates":    aggregates,
	})
	if err != nil {
		return "", err
	}

	res, err := d.LLM.Complete(ctx, llm.Request{
		Prompt:      prompt,
		SchemaName:  execSummarySchemaName,
		Schema:      executiveSummarySchema(),
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	var out struct {
		Summary string `json:"summary"`
	}
	if err := llm.ParseInto(res, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

func evidenceDigest(evidence []schema.EvidenceSummary) string {
	var sb strings.Builder
	for _, e := range evidence {
		fmt.Fprintf(&sb, "- %s [%s] %s\n", e.SHA256[:8], e.EvidenceType, e.Filename)
	}
	return sb.String()
}

func aggregatesDigest(oa schema.OverallAssessment) string {
	var sb strings.Builder
	if len(oa.QuotedStatements) > 0 {
		fmt.Fprintf(&sb, "Quoted statements from %d speaker(s).\n", len(oa.QuotedStatements))
	}
	if oa.CommunicationPatterns != nil {
		fmt.Fprintf(&sb, "Communication risk level: %s (escalation detected: %v).\n",
			oa.CommunicationPatterns.RiskLevel, oa.CommunicationPatterns.EscalationDetected)
	}
	if oa.PowerDynamics != nil {
		fmt.Fprintf(&sb, "Top participants by connection count: %s.\n", strings.Join(oa.PowerDynamics.TopParticipants, ", "))
	}
	if oa.ImageOCR != nil {
		fmt.Fprintf(&sb, "%d image(s) with visible text, %d with people, %d with timestamps.\n",
			oa.ImageOCR.ImagesWithText, oa.ImageOCR.ImagesWithPeople, oa.ImageOCR.ImagesWithTimestamps)
	}
	if oa.RelationshipNetwork != nil {
		fmt.Fprintf(&sb, "Key players: %s.\n", strings.Join(oa.RelationshipNetwork.KeyPlayers, ", "))
	}
	if sb.Len() == 0 {
		return "(no aggregate findings)"
	}
	return sb.String()
}

func chunkSummarySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"summary"},
		"properties": map[string]interface{}{
			"summary": map[string]interface{}{"type": "string"},
		},
	}
}

func executiveSummarySchema() map[string]interface{} {
	return chunkSummarySchema()
}
