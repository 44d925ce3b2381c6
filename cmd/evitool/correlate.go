package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evidence-toolkit/evitool/internal/cache"
	"github.com/evidence-toolkit/evitool/internal/correlate"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

var correlateCmd = &cobra.Command{
	Use:   "correlate <case_id>",
	Short: "Correlate evidence across a case and print a summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID := args[0]
		ctx := cmd.Context()

		s, err := openStore()
		if err != nil {
			return err
		}

		hashes, err := s.ListCase(caseID)
		if err != nil {
			return err
		}

		cacheMgr, err := buildCacheManager(ctx)
		if err != nil {
			return err
		}
		defer cacheMgr.Close()

		key := cache.SnapshotKey(caseID, hashes)
		if cached, found, err := cacheMgr.GetCorrelation(ctx, key); err == nil && found {
			appMetrics.RecordCacheLookup("correlation", true)
			printCorrelationSummary(*cached)
			return nil
		}
		appMetrics.RecordCacheLookup("correlation", false)

		llmClient, err := buildLLMClient(ctx)
		if err != nil {
			return err
		}
		defer llmClient.Close()
		pr, err := buildPrompts()
		if err != nil {
			return err
		}

		start := time.Now()
		deps := buildCorrelateDeps(s, llmClient, pr)
		analysis, err := correlate.Correlate(ctx, deps, caseID)
		if err != nil {
			appMetrics.ObserveStage("correlate", "failure", time.Since(start).Seconds())
			return err
		}
		appMetrics.ObserveStage("correlate", "success", time.Since(start).Seconds())

		if err := cacheMgr.SetCorrelation(ctx, key, *analysis); err != nil {
			logging.Warn("failed to cache correlation result", "error", err)
		}

		printCorrelationSummary(*analysis)
		return nil
	},
}

func printCorrelationSummary(a schema.CorrelationAnalysis) {
	fmt.Printf("case=%s  evidence=%d  entities=%d  timeline_events=%d  gaps=%d\n",
		a.CaseID, a.EvidenceCount, len(a.CorrelatedEntities), len(a.TimelineEvents), len(a.TimelineGaps))
	if len(a.SkippedHashes) > 0 {
		fmt.Printf("skipped %d hash(es) with unreadable analysis\n", len(a.SkippedHashes))
	}
}
