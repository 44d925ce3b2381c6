package correlate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/evidence-toolkit/evitool/internal/llm"
	"github.com/evidence-toolkit/evitool/internal/prompts"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// candidateOccurrence is one raw sighting of an entity before clustering.
type candidateOccurrence struct {
	rawName    string
	canonical  string
	proj       projections
	entityType schema.EntityType
	sha256     schema.SHA256Hex
	context    string
	confidence float64
}

// cluster is a set of occurrences merged under intersecting projections.
type cluster struct {
	occurrences []candidateOccurrence
}

// collectEntities extracts DocumentEntity sightings from every document
// and email analysis in analyses, then merges them into clusters whose
// projections intersect and whose types agree (spec §4.4 step 5).
func collectEntities(analyses []*schema.UnifiedAnalysis) []cluster {
	var occs []candidateOccurrence
	for _, ua := range analyses {
		if ua.DocumentAnalysis != nil {
			for _, e := range ua.DocumentAnalysis.Entities {
				occs = append(occs, newOccurrence(e.Name, e.Type, ua.Metadata.SHA256, e.Context, e.Confidence))
			}
		}
		if ua.EmailAnalysis != nil {
			for _, p := range ua.EmailAnalysis.Participants {
				name := p.EmailAddress
				if p.DisplayName.Present {
					name = p.DisplayName.Value
				}
				occs = append(occs, newOccurrence(name, schema.EntityPerson, ua.Metadata.SHA256, "email participant", p.Confidence))
			}
		}
	}

	var clusters []cluster
	for _, occ := range occs {
		merged := false
		for i := range clusters {
			if clusterAccepts(clusters[i], occ) {
				clusters[i].occurrences = append(clusters[i].occurrences, occ)
				merged = true
				break
			}
		}
		if !merged {
			clusters = append(clusters, cluster{occurrences: []candidateOccurrence{occ}})
		}
	}
	return clusters
}

func newOccurrence(name string, t schema.EntityType, sha schema.SHA256Hex, ctx string, confidence float64) candidateOccurrence {
	canon := Canonicalize(name)
	return candidateOccurrence{
		rawName:    name,
		canonical:  canon,
		proj:       projectName(canon),
		entityType: t,
		sha256:     sha,
		context:    ctx,
		confidence: confidence,
	}
}

// clusterAccepts reports whether occ's type agrees with c and its
// projections intersect any existing member's.
func clusterAccepts(c cluster, occ candidateOccurrence) bool {
	for _, member := range c.occurrences {
		if member.entityType != occ.entityType {
			continue
		}
		if member.proj.intersects(occ.proj) {
			return true
		}
	}
	return false
}

// buildCorrelatedEntities converts clusters with >= 2 distinct evidence
// hashes into schema.CorrelatedEntity records (spec §4.4's "correlated
// iff it appears in >= 2 distinct evidence hashes" rule).
func buildCorrelatedEntities(clusters []cluster) []schema.CorrelatedEntity {
	var out []schema.CorrelatedEntity
	for _, c := range clusters {
		distinct := map[schema.SHA256Hex]bool{}
		for _, occ := range c.occurrences {
			distinct[occ.sha256] = true
		}
		if len(distinct) < 2 {
			continue
		}

		name := representativeName(c)
		entType := c.occurrences[0].entityType

		var occurrences []schema.EvidenceOccurrence
		var confidenceSum float64
		for _, occ := range c.occurrences {
			occurrences = append(occurrences, schema.EvidenceOccurrence{
				EvidenceSHA256: occ.sha256,
				Context:        occ.context,
				Confidence:     occ.confidence,
			})
			confidenceSum += occ.confidence
		}
		sort.Slice(occurrences, func(i, j int) bool {
			if occurrences[i].EvidenceSHA256 != occurrences[j].EvidenceSHA256 {
				return occurrences[i].EvidenceSHA256 < occurrences[j].EvidenceSHA256
			}
			return occurrences[i].Context < occurrences[j].Context
		})

		out = append(out, schema.CorrelatedEntity{
			EntityName:          name,
			EntityType:          entType,
			OccurrenceCount:     len(occurrences),
			ConfidenceAverage:   confidenceSum / float64(len(c.occurrences)),
			EvidenceOccurrences: occurrences,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityName < out[j].EntityName })
	return out
}

// representativeName picks the longest raw name sighted in the cluster,
// on the theory that the fuller form ("Jane A. Doe") is more useful to a
// reader than a short-form or initials match that happened to merge it.
func representativeName(c cluster) string {
	best := c.occurrences[0].rawName
	for _, occ := range c.occurrences[1:] {
		if len(occ.rawName) > len(best) {
			best = occ.rawName
		}
	}
	return strings.TrimSpace(best)
}

// entityResolutionVerdict is the shape expected back from the optional
// AI arbitration call: the model may split a cluster into sub-groups of
// occurrence indices, one per resulting entity, but it is never offered
// (and so can never produce) a merge across clusters it did not receive.
type entityResolutionVerdict struct {
	Groups [][]int `json:"groups"`
}

// resolveAmbiguousClusters optionally arbitrates every cluster whose
// occurrences carry more than one distinct raw name, asking the LLM
// whether they are actually the same entity or should be split.
func resolveAmbiguousClusters(ctx context.Context, d Deps, clusters []cluster) []cluster {
	if d.LLM == nil {
		return clusters
	}

	var out []cluster
	for _, c := range clusters {
		if !ambiguous(c) {
			out = append(out, c)
			continue
		}
		split, err := arbitrateCluster(ctx, d, c)
		if err != nil {
			d.Log.Warn("entity resolution call failed, keeping projection-based cluster", "error", err)
			out = append(out, c)
			continue
		}
		out = append(out, split...)
	}
	return out
}

func ambiguous(c cluster) bool {
	names := map[string]bool{}
	for _, occ := range c.occurrences {
		names[occ.canonical] = true
	}
	return len(names) > 1
}

func arbitrateCluster(ctx context.Context, d Deps, c cluster) ([]cluster, error) {
	p, err := d.Prompts.Get(prompts.DomainEntityResolution, "")
	if err != nil {
		return nil, err
	}

	var names []string
	var contexts []string
	for i, occ := range c.occurrences {
		names = append(names, occ.rawName)
		contexts = append(contexts, fmt.Sprintf("[%d] %s: %s", i, occ.rawName, occ.context))
	}

	prompt, err := prompts.FullPrompt(p, map[string]interface{}{
		"CandidateNames":     strings.Join(names, ", "),
		"OccurrenceContexts": strings.Join(contexts, "\n"),
	})
	if err != nil {
		return nil, err
	}

	res, err := d.LLM.Complete(ctx, llm.Request{
		Prompt:      prompt,
		SchemaName:  "entity_resolution_verdict",
		Schema:      entityResolutionSchema(),
		Temperature: 0,
	})
	if err != nil {
		return nil, err
	}

	var verdict entityResolutionVerdict
	if err := llm.ParseInto(res, &verdict); err != nil {
		return nil, err
	}
	if len(verdict.Groups) == 0 {
		return []cluster{c}, nil
	}

	var split []cluster
	seen := map[int]bool{}
	for _, group := range verdict.Groups {
		var members []candidateOccurrence
		for _, idx := range group {
			if idx < 0 || idx >= len(c.occurrences) || seen[idx] {
				continue
			}
			seen[idx] = true
			members = append(members, c.occurrences[idx])
		}
		if len(members) > 0 {
			split = append(split, cluster{occurrences: members})
		}
	}
	// Any index the model left out of every group stays with the
	// original cluster rather than being silently dropped.
	var leftover []candidateOccurrence
	for i, occ := range c.occurrences {
		if !seen[i] {
			leftover = append(leftover, occ)
		}
	}
	if len(leftover) > 0 {
		split = append(split, cluster{occurrences: leftover})
	}
	return split, nil
}

func entityResolutionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"groups"},
		"properties": map[string]interface{}{
			"groups": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":  "array",
					"items": map[string]interface{}{"type": "integer"},
				},
			},
		},
	}
}
