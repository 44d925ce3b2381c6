package report

import (
	"fmt"
	"io"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

type relationshipNetworkGenerator struct{}

func (g *relationshipNetworkGenerator) ReportFilename() string { return "relationship_network.md" }

func (g *relationshipNetworkGenerator) HasData(summary *schema.CaseSummary) bool {
	rn := summary.OverallAssessment.RelationshipNetwork
	return rn != nil && len(rn.Edges) > 0
}

func (g *relationshipNetworkGenerator) Generate(summary *schema.CaseSummary, w io.Writer) error {
	rn := summary.OverallAssessment.RelationshipNetwork
	writeHeader(w, "Relationship Network")

	writeSection(w, "Key Players")
	bulletList(w, rn.KeyPlayers)

	writeSection(w, "Relationships")
	for _, e := range rn.Edges {
		fmt.Fprintf(w, "- %s **%s** %s\n", e.Source, e.RelationshipType, e.Target)
	}
	fmt.Fprintln(w)
	return nil
}
