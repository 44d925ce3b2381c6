package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evidence-toolkit/evitool/internal/report"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

var (
	generateReportsSummaryPath string
)

var generateReportsCmd = &cobra.Command{
	Use:   "generate-reports <case_id> <output_dir>",
	Short: "Generate Markdown reports from a case's summarise output",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, outputDir := args[0], args[1]

		summaryPath := generateReportsSummaryPath
		if summaryPath == "" {
			summaryPath = defaultCaseSummaryPath(caseID)
		}

		var summary schema.CaseSummary
		if err := readJSONFile(summaryPath, &summary); err != nil {
			return fmt.Errorf("read case summary (run `evitool summarise %s` first?): %w", caseID, err)
		}

		result, err := report.GenerateReports(&summary, outputDir)
		if err != nil {
			return err
		}

		for _, entry := range result.Log {
			line := fmt.Sprintf("%-7s %s", entry.Status, entry.Filename)
			if entry.Error != "" {
				line += "  " + entry.Error
			}
			fmt.Println(line)
		}
		fmt.Printf("\n%d report(s) written to %s\n", len(result.Paths), outputDir)
		return nil
	},
}

func init() {
	generateReportsCmd.Flags().StringVar(&generateReportsSummaryPath, "summary", "", "path to a case_summary.json (default: <store_root>/cases/<case_id>/case_summary.json)")
}
