package report

import (
	"fmt"
	"io"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

type quotedStatementsGenerator struct{}

func (g *quotedStatementsGenerator) ReportFilename() string { return "quoted_statements.md" }

func (g *quotedStatementsGenerator) HasData(summary *schema.CaseSummary) bool {
	return len(summary.OverallAssessment.QuotedStatements) > 0
}

func (g *quotedStatementsGenerator) Generate(summary *schema.CaseSummary, w io.Writer) error {
	writeHeader(w, "Quoted Statements")

	for _, speaker := range summary.OverallAssessment.QuotedStatements {
		fmt.Fprintf(w, "## %s (dominant sentiment: %s)\n\n", speaker.Speaker, speaker.DominantSentiment)
		for _, s := range speaker.Statements {
			fmt.Fprintf(w, "> %s\n>\n> — `%s`, sentiment: %s\n\n", s.Text, shortSHA(s.SourceSHA256), s.Sentiment)
		}
	}
	return nil
}
