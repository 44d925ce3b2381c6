package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evidence-toolkit/evitool/internal/analyzer"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

var (
	retryFailedCaseType string
	retryFailedMaxTries int
)

var retryFailedCmd = &cobra.Command{
	Use:   "retry-failed <case_id>",
	Short: "Re-run analysis for evidence whose last attempt failed with a transient LLM error",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID := args[0]
		ctx := cmd.Context()

		queue, err := buildDLQ()
		if err != nil {
			return err
		}

		pending, err := queue.GetPendingRetries(ctx, caseID, retryFailedMaxTries)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("nothing pending retry")
			return nil
		}

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
		deps := buildAnalyzerDeps(s, llmClient, pr)

		resolved := 0
		for _, entry := range pending {
			_, err := analyzer.Analyze(ctx, deps, entry.SHA256, retryFailedCaseType, "evitool-cli-retry")
			if err != nil {
				fmt.Printf("FAILED  %s: %v\n", entry.SHA256, err)
				continue
			}
			if err := queue.MarkResolved(ctx, caseID, entry.SHA256); err != nil {
				fmt.Printf("resolved %s but failed to clear queue entry: %v\n", entry.SHA256, err)
				continue
			}
			resolved++
			fmt.Printf("OK      %s\n", entry.SHA256)
		}
		fmt.Printf("\n%d/%d retried successfully\n", resolved, len(pending))
		return nil
	},
}

func init() {
	retryFailedCmd.Flags().StringVar(&retryFailedCaseType, "case-type", string(schema.CaseGeneric), "case type: generic, workplace, contract")
	retryFailedCmd.Flags().IntVar(&retryFailedMaxTries, "max-retries", defaultMaxRetries, "skip entries that have already been retried this many times")
}
