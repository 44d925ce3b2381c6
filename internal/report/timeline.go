package report

import (
	"fmt"
	"io"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

type timelineGenerator struct{}

func (g *timelineGenerator) ReportFilename() string { return "timeline.md" }

func (g *timelineGenerator) HasData(summary *schema.CaseSummary) bool {
	c := summary.Correlation
	return len(c.TimelineEvents) > 0 || len(c.TemporalSequences) > 0 || len(c.TimelineGaps) > 0
}

func (g *timelineGenerator) Generate(summary *schema.CaseSummary, w io.Writer) error {
	c := summary.Correlation
	writeHeader(w, "Timeline")

	if len(c.TimelineEvents) > 0 {
		writeSection(w, "Events")
		for _, e := range c.TimelineEvents {
			fmt.Fprintf(w, "- %s `%s` [%s] %s\n",
				e.Timestamp.Format("2006-01-02 15:04"), shortSHA(e.EvidenceSHA256), e.EventType, e.Description)
		}
		fmt.Fprintln(w)
	}

	if len(c.TemporalSequences) > 0 {
		writeSection(w, "Temporal Sequences")
		for _, seq := range c.TemporalSequences {
			fmt.Fprintf(w, "### Anchor: %s (%s)\n\n", seq.AnchorEvent.Description, seq.LegalSignificance)
			for _, e := range seq.Events {
				fmt.Fprintf(w, "- %s `%s` %s\n", e.Timestamp.Format("2006-01-02 15:04"), shortSHA(e.EvidenceSHA256), e.Description)
			}
			fmt.Fprintln(w)
		}
	}

	if len(c.TimelineGaps) > 0 {
		writeSection(w, "Gaps")
		for _, gap := range c.TimelineGaps {
			fmt.Fprintf(w, "- %.1fh gap (%s) between %q and %q\n",
				gap.DurationHours, gap.Significance, gap.BeforeEventSummary, gap.AfterEventSummary)
		}
		fmt.Fprintln(w)
	}

	return nil
}
