package graphstore

import (
	"context"
	"fmt"
)

// EntityNeighbors returns the sha256 of every piece of evidence a canonical
// entity name is mentioned in, for a given case. Mirrors the teacher's
// QueryCoupling shape: a single bounded-hop Cypher query returning a count
// or list rather than the whole graph.
func (c *Client) EntityNeighbors(ctx context.Context, caseID, canonicalEntityName string) ([]string, error) {
	result, err := c.run(ctx, `
		MATCH (e:Entity {name: $name})-[:MENTIONED_IN]->(ev:Evidence)-[:BELONGS_TO]->(case:Case {id: $case_id})
		RETURN ev.sha256 as sha256
	`, map[string]any{"name": canonicalEntityName, "case_id": caseID})
	if err != nil {
		return nil, fmt.Errorf("entity neighbors query failed: %w", err)
	}

	hashes := make([]string, 0, len(result.Records))
	for _, record := range result.Records {
		v, ok := record.Get("sha256")
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected type for sha256: %T", v)
		}
		hashes = append(hashes, s)
	}
	return hashes, nil
}

// SharedEntityCount returns how many distinct canonical entities two pieces
// of evidence in the same case have in common, a cheap proxy for how
// strongly they are linked beyond a single correlated entity lookup.
func (c *Client) SharedEntityCount(ctx context.Context, sha256A, sha256B string) (int, error) {
	result, err := c.run(ctx, `
		MATCH (a:Evidence {sha256: $a})<-[:MENTIONED_IN]-(e:Entity)-[:MENTIONED_IN]->(b:Evidence {sha256: $b})
		RETURN count(DISTINCT e) as count
	`, map[string]any{"a": sha256A, "b": sha256B})
	if err != nil {
		return 0, fmt.Errorf("shared entity count query failed: %w", err)
	}
	if len(result.Records) == 0 {
		return 0, nil
	}
	v, ok := result.Records[0].Get("count")
	if !ok {
		return 0, fmt.Errorf("shared entity count query returned no count")
	}
	countInt, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected type for count: %T", v)
	}
	return int(countInt), nil
}

// CaseEntityCount returns the total number of distinct canonical entities
// recorded for a case, for comparing graph coverage against the on-disk
// store's own counts; no CLI command calls it.
func (c *Client) CaseEntityCount(ctx context.Context, caseID string) (int, error) {
	result, err := c.run(ctx, `
		MATCH (case:Case {id: $case_id})<-[:BELONGS_TO]-(:Evidence)<-[:MENTIONED_IN]-(e:Entity)
		RETURN count(DISTINCT e) as count
	`, map[string]any{"case_id": caseID})
	if err != nil {
		return 0, fmt.Errorf("case entity count query failed: %w", err)
	}
	if len(result.Records) == 0 {
		return 0, nil
	}
	v, ok := result.Records[0].Get("count")
	if !ok {
		return 0, fmt.Errorf("case entity count query returned no count")
	}
	countInt, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected type for count: %T", v)
	}
	return int(countInt), nil
}
