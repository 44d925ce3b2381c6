package report

import (
	"fmt"
	"io"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

type legalPatternsGenerator struct{}

func (g *legalPatternsGenerator) ReportFilename() string { return "legal_patterns.md" }

func (g *legalPatternsGenerator) HasData(summary *schema.CaseSummary) bool {
	lp := summary.Correlation.LegalPatterns
	if lp == nil {
		return false
	}
	return len(lp.Contradictions) > 0 || len(lp.Corroboration) > 0 || len(lp.EvidenceGaps) > 0
}

func (g *legalPatternsGenerator) Generate(summary *schema.CaseSummary, w io.Writer) error {
	lp := summary.Correlation.LegalPatterns
	writeHeader(w, "Legal Patterns")

	if lp.PatternSummary != "" {
		fmt.Fprintf(w, "%s\n\n", lp.PatternSummary)
	}

	if len(lp.Contradictions) > 0 {
		writeSection(w, "Contradictions")
		for _, c := range lp.Contradictions {
			fmt.Fprintf(w, "- %s (severity %.2f, confidence %.2f)\n", c.Description, c.Severity, c.Confidence)
			bulletListHashes(w, c.EvidenceSHA256s)
		}
		fmt.Fprintln(w)
	}

	if len(lp.Corroboration) > 0 {
		writeSection(w, "Corroboration")
		for _, c := range lp.Corroboration {
			fmt.Fprintf(w, "- %s (confidence %.2f)\n", c.Description, c.Confidence)
			bulletListHashes(w, c.EvidenceSHA256s)
		}
		fmt.Fprintln(w)
	}

	if len(lp.EvidenceGaps) > 0 {
		writeSection(w, "Evidence Gaps")
		for _, gap := range lp.EvidenceGaps {
			fmt.Fprintf(w, "- %s (confidence %.2f)\n", gap.Description, gap.Confidence)
		}
		fmt.Fprintln(w)
	}

	return nil
}

func bulletListHashes(w io.Writer, hashes []schema.SHA256Hex) {
	for _, h := range hashes {
		fmt.Fprintf(w, "  - `%s`\n", shortSHA(h))
	}
}
