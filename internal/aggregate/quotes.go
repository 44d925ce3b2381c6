package aggregate

import (
	"sort"

	"github.com/evidence-toolkit/evitool/internal/correlate"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// buildQuotedStatements aggregates DocumentEntity.quoted_text across every
// document analysis, keyed by canonical speaker name, recording each
// statement's sentiment, risk flags, and source hash, plus the dominant
// sentiment over all of a speaker's statements (spec §4.5).
func buildQuotedStatements(analyses []*schema.UnifiedAnalysis) []schema.SpeakerStatements {
	bySpeaker := map[string]*schema.SpeakerStatements{}
	var order []string

	for _, ua := range analyses {
		if ua.DocumentAnalysis == nil {
			continue
		}
		docSentiment := ua.DocumentAnalysis.Sentiment
		docRiskFlags := ua.DocumentAnalysis.RiskFlags

		for _, e := range ua.DocumentAnalysis.Entities {
			if !e.QuotedText.Present {
				continue
			}
			speaker := correlate.Canonicalize(e.Name)
			if _, ok := bySpeaker[speaker]; !ok {
				bySpeaker[speaker] = &schema.SpeakerStatements{Speaker: speaker}
				order = append(order, speaker)
			}
			bySpeaker[speaker].Statements = append(bySpeaker[speaker].Statements, schema.QuotedStatement{
				Speaker:      speaker,
				Text:         e.QuotedText.Value,
				Sentiment:    docSentiment,
				RiskFlags:    docRiskFlags,
				SourceSHA256: ua.Metadata.SHA256,
			})
		}
	}

	sort.Strings(order)
	out := make([]schema.SpeakerStatements, 0, len(order))
	for _, speaker := range order {
		s := bySpeaker[speaker]
		s.DominantSentiment = dominantSentiment(s.Statements)
		out = append(out, *s)
	}
	return out
}

// dominantSentiment returns the most frequent sentiment across
// statements, breaking ties by enum order (hostile > professional >
// neutral), the most legally salient sentiment first.
func dominantSentiment(statements []schema.QuotedStatement) schema.Sentiment {
	counts := map[schema.Sentiment]int{}
	for _, s := range statements {
		counts[s.Sentiment]++
	}
	best := schema.SentimentNeutral
	bestCount := -1
	for _, candidate := range []schema.Sentiment{schema.SentimentHostile, schema.SentimentProfessional, schema.SentimentNeutral} {
		if counts[candidate] > bestCount {
			best = candidate
			bestCount = counts[candidate]
		}
	}
	return best
}
