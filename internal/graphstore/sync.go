package graphstore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/evidence-toolkit/evitool/internal/correlate"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SyncStats tracks how many nodes and edges a Sync call wrote. Mirrors the
// teacher's graph.BuildStats{Nodes,Edges} shape.
type SyncStats struct {
	Nodes int
	Edges int
}

// Sync writes a case's CorrelationAnalysis into the graph as Case/Evidence/
// Entity nodes and MENTIONED_IN/CORRELATES_WITH/CORROBORATES/CONTRADICTS
// edges. Every MERGE is idempotent, so re-running Sync after a re-analysis
// of the same case converges rather than duplicates.
func (c *Client) Sync(ctx context.Context, analysis schema.CorrelationAnalysis) (*SyncStats, error) {
	stats := &SyncStats{}

	if _, err := c.run(ctx, `MERGE (case:Case {id: $id})`, map[string]any{"id": analysis.CaseID}); err != nil {
		return nil, fmt.Errorf("merge case node: %w", err)
	}
	stats.Nodes++

	seenEvidence := map[schema.SHA256Hex]bool{}
	mergeEvidence := func(hash schema.SHA256Hex) error {
		if seenEvidence[hash] {
			return nil
		}
		_, err := c.run(ctx, `
			MATCH (case:Case {id: $case_id})
			MERGE (ev:Evidence {sha256: $sha256})
			MERGE (ev)-[:BELONGS_TO]->(case)
		`, map[string]any{"case_id": analysis.CaseID, "sha256": string(hash)})
		if err != nil {
			return fmt.Errorf("merge evidence node %s: %w", hash, err)
		}
		seenEvidence[hash] = true
		stats.Nodes++
		stats.Edges++
		return nil
	}

	for _, entity := range analysis.CorrelatedEntities {
		canonical := correlate.Canonicalize(entity.EntityName)
		if _, err := c.run(ctx, `
			MERGE (e:Entity {name: $name, type: $type})
			SET e.occurrence_count = $occurrence_count, e.confidence_average = $confidence_average
		`, map[string]any{
			"name":               canonical,
			"type":               string(entity.EntityType),
			"occurrence_count":   entity.OccurrenceCount,
			"confidence_average": entity.ConfidenceAverage,
		}); err != nil {
			return nil, fmt.Errorf("merge entity node %s: %w", canonical, err)
		}
		stats.Nodes++

		for _, occ := range entity.EvidenceOccurrences {
			if err := mergeEvidence(occ.EvidenceSHA256); err != nil {
				return nil, err
			}
			if _, err := c.run(ctx, `
				MATCH (e:Entity {name: $name, type: $type})
				MATCH (ev:Evidence {sha256: $sha256})
				MERGE (e)-[r:MENTIONED_IN]->(ev)
				SET r.context = $context, r.confidence = $confidence
			`, map[string]any{
				"name":       canonical,
				"type":       string(entity.EntityType),
				"sha256":     string(occ.EvidenceSHA256),
				"context":    occ.Context,
				"confidence": occ.Confidence,
			}); err != nil {
				return nil, fmt.Errorf("merge MENTIONED_IN edge for %s: %w", canonical, err)
			}
			stats.Edges++
		}
	}

	if analysis.LegalPatterns != nil {
		for _, contradiction := range analysis.LegalPatterns.Contradictions {
			n, err := c.linkAll(ctx, contradiction.EvidenceSHA256s, "CONTRADICTS", map[string]any{
				"description": contradiction.Description,
				"severity":    contradiction.Severity,
				"confidence":  contradiction.Confidence,
			}, mergeEvidence)
			if err != nil {
				return nil, err
			}
			stats.Edges += n
		}
		for _, corroboration := range analysis.LegalPatterns.Corroboration {
			n, err := c.linkAll(ctx, corroboration.EvidenceSHA256s, "CORROBORATES", map[string]any{
				"description": corroboration.Description,
				"confidence":  corroboration.Confidence,
			}, mergeEvidence)
			if err != nil {
				return nil, err
			}
			stats.Edges += n
		}
	}

	return stats, nil
}

// linkAll connects every pairwise combination of hashes with a relLabel
// edge carrying props, merging each Evidence node first via mergeEvidence.
// A contradiction or corroboration can name more than two pieces of
// evidence, so every pair is linked rather than just the first two.
func (c *Client) linkAll(ctx context.Context, hashes []schema.SHA256Hex, relLabel string, props map[string]any, mergeEvidence func(schema.SHA256Hex) error) (int, error) {
	if !validIdentifier.MatchString(relLabel) {
		return 0, fmt.Errorf("invalid relationship label: %s", relLabel)
	}
	for k := range props {
		if !validIdentifier.MatchString(k) {
			return 0, fmt.Errorf("invalid relationship property key: %s", k)
		}
	}
	for _, h := range hashes {
		if err := mergeEvidence(h); err != nil {
			return 0, err
		}
	}

	edges := 0
	for i := 0; i < len(hashes); i++ {
		for j := i + 1; j < len(hashes); j++ {
			params := map[string]any{"from": string(hashes[i]), "to": string(hashes[j])}
			for k, v := range props {
				params[k] = v
			}
			cypher := fmt.Sprintf(`
				MATCH (a:Evidence {sha256: $from})
				MATCH (b:Evidence {sha256: $to})
				MERGE (a)-[r:%s]-(b)
				SET %s
			`, relLabel, setClauseFromProps(props))
			if _, err := c.run(ctx, cypher, params); err != nil {
				return edges, fmt.Errorf("merge %s edge between %s and %s: %w", relLabel, hashes[i], hashes[j], err)
			}
			edges++
		}
	}
	return edges, nil
}

func setClauseFromProps(props map[string]any) string {
	clause := ""
	first := true
	for k := range props {
		if !first {
			clause += ", "
		}
		clause += fmt.Sprintf("r.%s = $%s", k, k)
		first = false
	}
	if clause == "" {
		return "r.updated = true"
	}
	return clause
}
