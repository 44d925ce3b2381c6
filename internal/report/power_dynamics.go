package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

type powerDynamicsGenerator struct{}

func (g *powerDynamicsGenerator) ReportFilename() string { return "power_dynamics.md" }

func (g *powerDynamicsGenerator) HasData(summary *schema.CaseSummary) bool {
	pd := summary.OverallAssessment.PowerDynamics
	return pd != nil && len(pd.Participants) > 0
}

func (g *powerDynamicsGenerator) Generate(summary *schema.CaseSummary, w io.Writer) error {
	pd := summary.OverallAssessment.PowerDynamics
	writeHeader(w, "Power Dynamics")

	writeSection(w, "Top Participants by Connection Count")
	bulletList(w, pd.TopParticipants)

	writeSection(w, "Participant Profiles")
	for _, p := range pd.Participants {
		fmt.Fprintf(w, "- **%s** — %d message(s), mean deference %.2f, topics: %s\n",
			p.EmailAddress, p.MessageCount, p.MeanDeferenceScore, strings.Join(p.DominantTopics, ", "))
	}
	fmt.Fprintln(w)
	return nil
}
