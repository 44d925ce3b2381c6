package aggregate

import (
	"context"
	"sort"
	"strings"

	"github.com/evidence-toolkit/evitool/internal/correlate"
	"github.com/evidence-toolkit/evitool/internal/resolution"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

const keyPlayersLimit = 5

// unresolvedTarget is used when a DocumentEntity.relationship string
// doesn't name another entity already known to the case — the edge is
// still recorded (spec §4.5 says "construct triples", not "only the
// ones we can fully resolve") but its target is left generic rather
// than guessed.
const unresolvedTarget = "(unspecified)"

// buildRelationshipNetwork turns every DocumentEntity.relationship
// string into a (source, target, relationship_type) triple: source is
// the entity carrying the relationship, relationship_type is the raw
// text verbatim (prompts are asked for short phrases, e.g. "reports
// to"), and target is whichever other known entity name the text
// mentions. When the text substring-matches exactly one other known
// name the match is used directly; when it matches several (e.g. two
// people who share a last name), the ambiguity is handed to the
// resolution ladder (unique/LLM/heuristic); when the ladder errors or
// picks no candidate, the first matching name in sorted order is used.
func buildRelationshipNetwork(ctx context.Context, d Deps, analyses []*schema.UnifiedAnalysis) *schema.RelationshipNetwork {
	knownNames := collectKnownNames(analyses)
	resolver := &resolution.Resolver{LLM: d.LLM, Prompts: d.Prompts, Log: d.Log}

	var edges []schema.RelationshipEdge
	nodeSet := map[string]bool{}
	frequency := map[string]int{}

	for _, ua := range analyses {
		if ua.DocumentAnalysis == nil {
			continue
		}
		for _, e := range ua.DocumentAnalysis.Entities {
			if !e.Relationship.Present || e.Relationship.Value == "" {
				continue
			}
			source := correlate.Canonicalize(e.Name)
			target := resolveTarget(ctx, resolver, e.Relationship.Value, source, knownNames)

			edges = append(edges, schema.RelationshipEdge{
				Source:           source,
				Target:           target,
				RelationshipType: e.Relationship.Value,
			})
			nodeSet[source] = true
			nodeSet[target] = true
			frequency[source]++
			frequency[target]++
		}
	}
	if len(edges) == 0 {
		return nil
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})

	return &schema.RelationshipNetwork{
		Nodes:      sortedKeys(nodeSet),
		Edges:      edges,
		KeyPlayers: rankByFrequency(frequency, keyPlayersLimit),
	}
}

// collectKnownNames gathers the canonical form of every entity and email
// participant sighted anywhere in the case, for target resolution.
func collectKnownNames(analyses []*schema.UnifiedAnalysis) []string {
	seen := map[string]bool{}
	for _, ua := range analyses {
		if ua.DocumentAnalysis != nil {
			for _, e := range ua.DocumentAnalysis.Entities {
				seen[correlate.Canonicalize(e.Name)] = true
			}
		}
		if ua.EmailAnalysis != nil {
			for _, p := range ua.EmailAnalysis.Participants {
				name := p.EmailAddress
				if p.DisplayName.Present {
					name = p.DisplayName.Value
				}
				seen[correlate.Canonicalize(name)] = true
			}
		}
	}
	return sortedKeys(seen)
}

func resolveTarget(ctx context.Context, resolver *resolution.Resolver, relationshipText, source string, knownNames []string) string {
	lower := strings.ToLower(relationshipText)

	var candidates []resolution.Candidate
	for _, name := range knownNames {
		if name == source || name == "" {
			continue
		}
		if strings.Contains(lower, name) {
			candidates = append(candidates, resolution.Candidate{Name: name})
		}
	}
	if len(candidates) == 0 {
		return unresolvedTarget
	}
	if len(candidates) == 1 {
		return candidates[0].Name
	}

	result, err := resolver.Resolve(ctx, relationshipText, candidates)
	if err != nil || result.Matched == nil {
		return candidates[0].Name
	}
	return result.Matched.Name
}

func rankByFrequency(frequency map[string]int, limit int) []string {
	type entry struct {
		name  string
		count int
	}
	var entries []entry
	for name, count := range frequency {
		if name == unresolvedTarget {
			continue
		}
		entries = append(entries, entry{name: name, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.name)
	}
	return out
}
