package aggregate

import "github.com/evidence-toolkit/evitool/internal/schema"

// buildCommunicationPatterns distributes EmailThreadAnalysis.communication_pattern
// across every email in the case, derives a risk level, and reports
// whether any escalation event was detected anywhere (spec §4.5).
func buildCommunicationPatterns(analyses []*schema.UnifiedAnalysis) *schema.CommunicationPatterns {
	distribution := map[schema.CommunicationPattern]int{}
	escalation := false
	anyEmail := false

	for _, ua := range analyses {
		if ua.EmailAnalysis == nil {
			continue
		}
		anyEmail = true
		distribution[ua.EmailAnalysis.CommunicationPattern]++
		if len(ua.EmailAnalysis.EscalationEvents) > 0 {
			escalation = true
		}
	}
	if !anyEmail {
		return nil
	}

	return &schema.CommunicationPatterns{
		Distribution:       distribution,
		RiskLevel:          communicationRiskLevel(distribution),
		EscalationDetected: escalation,
	}
}

// communicationRiskLevel implements spec §4.5's "high if any thread is
// hostile/retaliatory, medium if any escalating, else low".
func communicationRiskLevel(distribution map[schema.CommunicationPattern]int) schema.LegalSignificance {
	if distribution[schema.CommHostile] > 0 || distribution[schema.CommRetaliatory] > 0 {
		return schema.SignificanceHigh
	}
	if distribution[schema.CommEscalating] > 0 {
		return schema.SignificanceMedium
	}
	return schema.SignificanceLow
}
