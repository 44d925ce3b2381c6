package report

import (
	"io"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

type executiveSummaryGenerator struct{}

func (g *executiveSummaryGenerator) ReportFilename() string { return "executive_summary.md" }

func (g *executiveSummaryGenerator) HasData(summary *schema.CaseSummary) bool {
	return summary.ExecutiveSummary.Present
}

func (g *executiveSummaryGenerator) Generate(summary *schema.CaseSummary, w io.Writer) error {
	writeHeader(w, "Executive Summary")
	io.WriteString(w, summary.ExecutiveSummary.Value)
	io.WriteString(w, "\n")
	return nil
}
