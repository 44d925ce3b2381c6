package correlate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// roleVariants is a small closed dictionary of title expansions that
// collapse to the same canonical role token, so "Chief Executive
// Officer" and "CEO" correlate as the same entity reference.
var roleVariants = map[string]string{
	"chief executive officer": "ceo",
	"chief operating officer": "coo",
	"chief financial officer": "cfo",
	"chief technology officer": "cto",
	"human resources":         "hr",
	"human resources manager": "hr manager",
	"vice president":          "vp",
	"senior vice president":   "svp",
	"general counsel":         "gc",
}

var fold = cases.Fold()

// Canonicalize runs a name through NFKC normalisation, casefolding, role
// expansion, and "Last, First" reordering, in that order. Exported so
// the case aggregator (C5) can key its own entity-derived aggregates
// (quoted statements, relationship network) by the same canonical form
// the correlator clusters on, per spec §4.5.
func Canonicalize(name string) string {
	s := norm.NFKC.String(name)
	s = fold.String(s)
	s = strings.TrimSpace(s)
	s = collapseSpace(s)

	if expanded, ok := roleVariants[s]; ok {
		s = expanded
	}
	if commaFirst, ok := invertLastFirst(s); ok {
		s = commaFirst
	}
	return s
}

// collapseSpace reduces any run of whitespace to a single space.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// invertLastFirst converts "last, first" to "first last"; ok is false
// when s carries no comma or looks like more than a two-part name (to
// avoid mangling "Smith, John Q., Jr.").
func invertLastFirst(s string) (string, bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return s, false
	}
	last := strings.TrimSpace(parts[0])
	first := strings.TrimSpace(parts[1])
	if last == "" || first == "" || strings.Contains(first, ",") {
		return s, false
	}
	return first + " " + last, true
}

// projections are the three indexing keys computed per canonical name.
type projections struct {
	base    string
	short   string
	initials string
}

// projectName computes projections for an already-canonicalized name.
func projectName(canonical string) projections {
	words := strings.Fields(canonical)
	if len(words) == 0 {
		return projections{}
	}

	base := strings.Join(words, " ")

	short := words[0]
	if len(words) > 1 {
		short = words[0] + " " + words[len(words)-1]
	}

	var initials strings.Builder
	for _, w := range words {
		if r := []rune(w); len(r) > 0 {
			initials.WriteRune(r[0])
		}
	}

	return projections{base: base, short: short, initials: initials.String()}
}

// intersects reports whether p and q share any non-empty projection.
func (p projections) intersects(q projections) bool {
	if p.base != "" && (p.base == q.base || p.base == q.short) {
		return true
	}
	if p.short != "" && (p.short == q.base || p.short == q.short) {
		return true
	}
	if p.initials != "" && p.initials == q.initials && (p.short != "" || q.short != "") {
		return true
	}
	return false
}
