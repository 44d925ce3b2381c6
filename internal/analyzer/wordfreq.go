package analyzer

import (
	"sort"
	"strings"
	"unicode"
)

// stopWords is the filtered-out set for the word-frequency annex fields
// (spec §4.3's derived properties, not used by correlation).
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"to": true, "of": true, "in": true, "on": true, "at": true, "for": true,
	"with": true, "by": true, "from": true, "as": true, "that": true, "this": true,
	"it": true, "we": true, "you": true, "i": true, "he": true, "she": true,
	"they": true, "his": true, "her": true, "their": true, "has": true, "have": true,
	"had": true, "will": true, "would": true, "can": true, "could": true, "not": true,
}

const topWordsLimit = 10

// wordFrequency returns the total word count, unique word count, and the
// top stop-word-filtered terms by frequency, over text.
func wordFrequency(text string) (total, unique int, topWords []string) {
	counts := map[string]int{}
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	total = len(words)
	for _, w := range words {
		counts[strings.ToLower(w)]++
	}
	unique = len(counts)

	type pair struct {
		word  string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for w, c := range counts {
		if stopWords[w] || len(w) < 2 {
			continue
		}
		pairs = append(pairs, pair{w, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].word < pairs[j].word
	})
	for i := 0; i < len(pairs) && i < topWordsLimit; i++ {
		topWords = append(topWords, pairs[i].word)
	}
	return total, unique, topWords
}
