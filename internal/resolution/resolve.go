// Package resolution disambiguates a free-text mention against several
// known candidate entities, the same unique/LLM/heuristic ladder the
// teacher used to disambiguate duplicate code-block names, adapted here
// to entity-name mentions (spec §4.5's relationship-network target
// resolution, and any other caller needing "which of these names does
// this text mean").
package resolution

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/evidence-toolkit/evitool/internal/llm"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/prompts"
)

// confidenceThreshold is the minimum LLM-reported confidence accepted
// before falling back to the heuristic tier.
const confidenceThreshold = 0.7

// Candidate is one known entity a mention might refer to.
type Candidate struct {
	Name    string
	Context string
}

// Result is the outcome of resolving a mention against a candidate list.
type Result struct {
	Matched    *Candidate
	Confidence float64
	Method     string // "unique", "llm", "heuristic", "no_match"
	Reason     string
}

// Resolver disambiguates mentions. LLM may be nil, in which case the
// ladder always falls straight to the heuristic tier.
type Resolver struct {
	LLM     *llm.Client
	Prompts *prompts.Registry
	Log     *logging.Logger
}

// Resolve picks the candidate mention most plausibly refers to, trying
// the unique case first, then an LLM arbitration call (if available),
// then a word-overlap heuristic.
func (r *Resolver) Resolve(ctx context.Context, mention string, candidates []Candidate) (Result, error) {
	if len(candidates) == 0 {
		return Result{Method: "no_match", Reason: "no candidates supplied"}, nil
	}
	if len(candidates) == 1 {
		c := candidates[0]
		return Result{Matched: &c, Confidence: 1.0, Method: "unique", Reason: "only one candidate"}, nil
	}

	if r.LLM != nil {
		result, err := r.resolveWithLLM(ctx, mention, candidates)
		if err == nil && result.Matched != nil && result.Confidence >= confidenceThreshold {
			return result, nil
		}
		if err != nil && r.Log != nil {
			r.Log.Warn("mention resolution llm call failed, falling back to heuristic", "error", err)
		}
	}

	return resolveHeuristic(mention, candidates), nil
}

type mentionVerdict struct {
	MatchedIndex int     `json:"matched_index"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

func (r *Resolver) resolveWithLLM(ctx context.Context, mention string, candidates []Candidate) (Result, error) {
	p, err := r.Prompts.Get(prompts.DomainMentionResolution, "")
	if err != nil {
		return Result{}, err
	}
	prompt, err := prompts.FullPrompt(p, map[string]interface{}{
		"MentionText":   mention,
		"CandidateList": candidateList(candidates),
	})
	if err != nil {
		return Result{}, err
	}

	res, err := r.LLM.Complete(ctx, llm.Request{
		Prompt:      prompt,
		SchemaName:  "mention_resolution",
		Schema:      mentionResolutionSchema(),
		Temperature: 0,
	})
	if err != nil {
		return Result{}, err
	}

	var verdict mentionVerdict
	if err := llm.ParseInto(res, &verdict); err != nil {
		return Result{}, err
	}
	if verdict.MatchedIndex < 0 || verdict.MatchedIndex >= len(candidates) {
		return Result{Method: "llm", Confidence: verdict.Confidence, Reason: verdict.Reasoning}, nil
	}

	matched := candidates[verdict.MatchedIndex]
	return Result{
		Matched:    &matched,
		Confidence: verdict.Confidence,
		Method:     "llm",
		Reason:     verdict.Reasoning,
	}, nil
}

// resolveHeuristic scores each candidate by the fraction of its
// whitespace-separated words that appear in the mention text, the same
// overlap-counting idea as the teacher's line-range heuristic adapted
// from line numbers to words.
func resolveHeuristic(mention string, candidates []Candidate) Result {
	lowerMention := strings.ToLower(mention)

	type scored struct {
		candidate Candidate
		score     float64
	}
	var scores []scored
	for _, c := range candidates {
		words := strings.Fields(strings.ToLower(c.Name))
		if len(words) == 0 {
			continue
		}
		matches := 0
		for _, w := range words {
			if strings.Contains(lowerMention, w) {
				matches++
			}
		}
		scores = append(scores, scored{candidate: c, score: float64(matches) / float64(len(words))})
	}
	if len(scores) == 0 {
		return Result{Method: "no_match", Reason: "no candidate words matched the mention"}
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	best := scores[0]
	if best.score == 0 {
		return Result{Method: "no_match", Reason: "no candidate words matched the mention"}
	}

	confidence := best.score
	if confidence < 0.5 {
		confidence = 0.5
	}
	return Result{
		Matched:    &best.candidate,
		Confidence: confidence,
		Method:     "heuristic",
		Reason:     "word overlap with mention text",
	}
}

func candidateList(candidates []Candidate) string {
	var sb strings.Builder
	for i, c := range candidates {
		sb.WriteString("[" + strconv.Itoa(i) + "] " + c.Name + " — " + c.Context + "\n")
	}
	return sb.String()
}

func mentionResolutionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"matched_index", "confidence", "reasoning"},
		"properties": map[string]interface{}{
			"matched_index": map[string]interface{}{"type": "integer"},
			"confidence":    map[string]interface{}{"type": "number"},
			"reasoning":     map[string]interface{}{"type": "string"},
		},
	}
}
