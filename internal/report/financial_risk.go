package report

import (
	"io"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

type financialRiskGenerator struct{}

func (g *financialRiskGenerator) ReportFilename() string { return "financial_risk.md" }

func (g *financialRiskGenerator) HasData(summary *schema.CaseSummary) bool {
	oa := summary.OverallAssessment
	return oa.TribunalProbability.Present &&
		oa.FinancialExposureSummary.Present &&
		oa.ClaimStrengthSummary.Present &&
		oa.SettlementRecommendation.Present
}

func (g *financialRiskGenerator) Generate(summary *schema.CaseSummary, w io.Writer) error {
	oa := summary.OverallAssessment
	writeHeader(w, "Financial Risk Assessment")

	writeSection(w, "Tribunal Probability")
	io.WriteString(w, oa.TribunalProbability.Value+"\n\n")

	writeSection(w, "Financial Exposure")
	io.WriteString(w, oa.FinancialExposureSummary.Value+"\n\n")

	writeSection(w, "Claim Strength")
	io.WriteString(w, oa.ClaimStrengthSummary.Value+"\n\n")

	writeSection(w, "Settlement Recommendation")
	io.WriteString(w, oa.SettlementRecommendation.Value+"\n")
	return nil
}
