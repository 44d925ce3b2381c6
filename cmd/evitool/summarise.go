package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evidence-toolkit/evitool/internal/aggregate"
	"github.com/evidence-toolkit/evitool/internal/cache"
	"github.com/evidence-toolkit/evitool/internal/correlate"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

var (
	summariseCaseType string
	summariseOut      string
)

var summariseCmd = &cobra.Command{
	Use:   "summarise <case_id>",
	Short: "Aggregate a case's correlation result into a CaseSummary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID := args[0]
		ctx := cmd.Context()

		s, err := openStore()
		if err != nil {
			return err
		}
		llmClient, err := buildLLMClient(ctx)
		if err != nil {
			return err
		}
		defer llmClient.Close()
		pr, err := buildPrompts()
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

		var correlation *schema.CorrelationAnalysis
		if cached, found, err := cacheMgr.GetCorrelation(ctx, key); err == nil && found {
			appMetrics.RecordCacheLookup("correlation", true)
			correlation = cached
		} else {
			appMetrics.RecordCacheLookup("correlation", false)
			correlation, err = correlate.Correlate(ctx, buildCorrelateDeps(s, llmClient, pr), caseID)
			if err != nil {
				return err
			}
			if err := cacheMgr.SetCorrelation(ctx, key, *correlation); err != nil {
				logging.Warn("failed to cache correlation result", "error", err)
			}
		}

		start := time.Now()
		summary, err := aggregate.Aggregate(ctx, buildAggregateDeps(s, llmClient, pr), caseID, summariseCaseType, *correlation)
		if err != nil {
			appMetrics.ObserveStage("summarise", "failure", time.Since(start).Seconds())
			return err
		}
		appMetrics.ObserveStage("summarise", "success", time.Since(start).Seconds())
		if err := cacheMgr.SetCaseSummary(ctx, key, *summary); err != nil {
			logging.Warn("failed to cache case summary", "error", err)
		}

		out := summariseOut
		if out == "" {
			out = defaultCaseSummaryPath(caseID)
		}
		if err := writeJSONFile(out, summary); err != nil {
			return fmt.Errorf("write case summary: %w", err)
		}

		fmt.Printf("wrote %s\n", out)
		fmt.Printf("case=%s  evidence=%d  evidence_types=%v\n",
			summary.CaseID, summary.EvidenceCount, summary.EvidenceTypes)
		return nil
	},
}

func init() {
	summariseCmd.Flags().StringVar(&summariseCaseType, "case-type", string(schema.CaseGeneric), "case type: generic, workplace, contract")
	summariseCmd.Flags().StringVar(&summariseOut, "out", "", "output path for the case_summary.json (default: <store_root>/cases/<case_id>/case_summary.json)")
}
