package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/schema"
	"github.com/evidence-toolkit/evitool/internal/validate"
)

var validateSummaryPath string

var validateCmd = &cobra.Command{
	Use:   "validate <case_id>",
	Short: "Check a case's on-disk state against the toolkit's quantified invariants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID := args[0]
		ctx := cmd.Context()

		s, err := openStore()
		if err != nil {
			return err
		}

		checker := validate.NewChecker(s, validate.Thresholds{
			GapThresholdHours: cfg.Correlation.GapThresholdHours,
			GapHighHours:      cfg.Correlation.GapHighHours,
			GapMediumHours:    cfg.Correlation.GapMediumHours,
		})

		var summary *schema.CaseSummary
		summaryPath := validateSummaryPath
		if summaryPath == "" {
			summaryPath = defaultCaseSummaryPath(caseID)
		}
		var loaded schema.CaseSummary
		if readJSONFile(summaryPath, &loaded) == nil {
			summary = &loaded
		}

		var correlation *schema.CorrelationAnalysis
		if summary != nil {
			correlation = &summary.Correlation
		}

		rpt, err := checker.ValidateCase(ctx, caseID, correlation, summary)
		if err != nil {
			return err
		}

		validate.LogReport(logging.With("component", "validate"), rpt)

		if !rpt.AllPassed() {
			fmt.Fprintln(os.Stderr, "validation FAILED")
			return evierrors.StoreConsistencyErr(fmt.Sprintf("case %s failed one or more invariants", caseID))
		}
		fmt.Println("validation PASSED")
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSummaryPath, "summary", "", "path to a case_summary.json to include summary/correlation checks (default: <store_root>/cases/<case_id>/case_summary.json, skipped if absent)")
}
