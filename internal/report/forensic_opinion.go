package report

import (
	"io"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

type forensicOpinionGenerator struct{}

func (g *forensicOpinionGenerator) ReportFilename() string { return "forensic_legal_opinion.md" }

func (g *forensicOpinionGenerator) HasData(summary *schema.CaseSummary) bool {
	oa := summary.OverallAssessment
	return oa.ForensicSummary.Present &&
		oa.ForensicLegalImplications.Present &&
		oa.ForensicRecommendedActions.Present &&
		oa.ForensicRiskAssessment.Present
}

func (g *forensicOpinionGenerator) Generate(summary *schema.CaseSummary, w io.Writer) error {
	oa := summary.OverallAssessment
	writeHeader(w, "Forensic Legal Opinion")

	writeSection(w, "Summary")
	io.WriteString(w, oa.ForensicSummary.Value+"\n\n")

	writeSection(w, "Legal Implications")
	io.WriteString(w, oa.ForensicLegalImplications.Value+"\n\n")

	writeSection(w, "Recommended Actions")
	io.WriteString(w, oa.ForensicRecommendedActions.Value+"\n\n")

	writeSection(w, "Risk Assessment")
	io.WriteString(w, oa.ForensicRiskAssessment.Value+"\n")
	return nil
}
