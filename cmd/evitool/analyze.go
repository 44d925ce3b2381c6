package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evidence-toolkit/evitool/internal/analyzer"
	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// defaultMaxRetries bounds how many times a DLQ entry is considered
// retryable before it's treated as exhausted.
const defaultMaxRetries = 3

var (
	analyzeCaseType      string
	analyzeMaxConcurrent int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <case_id>",
	Short: "Run per-type analysis over every item in a case",
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

		maxConcurrent := analyzeMaxConcurrent
		if maxConcurrent <= 0 {
			maxConcurrent = cfg.Concurrency.MaxConcurrent
		}

		start := time.Now()
		deps := buildAnalyzerDeps(s, llmClient, pr)
		results := analyzer.AnalyzeBatch(ctx, deps, hashes, analyzeCaseType, "evitool-cli", maxConcurrent)

		queue, qerr := buildDLQ()
		if qerr != nil {
			logging.Warn("retry queue unavailable, transient failures will not be re-drivable", "error", qerr)
		}

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				appMetrics.RecordLLMCall("unknown", "failure", 0, 0)
				appMetrics.RecordStageFailure("analyze", evierrors.KindOf(r.Err).String())
				fmt.Printf("FAILED  %s: %v\n", r.Hash, r.Err)
				if queue != nil && isRetryable(r.Err) {
					if err := queue.Enqueue(ctx, caseID, r.Hash, r.Err, nil); err != nil {
						logging.Warn("enqueue retry failed", "sha256", r.Hash, "error", err)
					}
				}
				continue
			}
			appMetrics.RecordLLMCall(string(r.Analysis.EvidenceType), "success", 0, 0)
			fmt.Printf("OK      %s  type=%s\n", r.Hash, r.Analysis.EvidenceType)
			if queue != nil {
				if err := queue.MarkResolved(ctx, caseID, r.Hash); err != nil {
					logging.Warn("mark resolved failed", "sha256", r.Hash, "error", err)
				}
			}
		}
		outcome := "success"
		if failed > 0 {
			outcome = "partial"
		}
		appMetrics.ObserveStage("analyze", outcome, time.Since(start).Seconds())
		if queue != nil {
			if st, err := queue.GetStats(caseID, defaultMaxRetries); err == nil {
				appMetrics.SetDLQDepth(caseID, st.RetryableEntries)
			}
		}
		fmt.Printf("\n%d/%d analyzed, %d failed\n", len(results)-failed, len(results), failed)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCaseType, "case-type", string(schema.CaseGeneric), "case type: generic, workplace, contract")
	analyzeCmd.Flags().IntVar(&analyzeMaxConcurrent, "max-concurrent", 0, "in-flight LLM call cap (0 = config default)")
}

// isRetryable reports whether err is a transient LLM failure worth
// re-driving later rather than a permanent one (refusal, schema failure).
func isRetryable(err error) bool {
	switch evierrors.KindOf(err) {
	case evierrors.LLMUnavailable, evierrors.LLMIncomplete:
		return true
	default:
		return false
	}
}
