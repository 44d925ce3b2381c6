package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path> <case_id>",
	Short: "Ingest a file or directory of evidence into a case",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, caseID := args[0], args[1]

		s, err := openStore()
		if err != nil {
			return err
		}

		files, err := expandIngestPath(path)
		if err != nil {
			return err
		}

		for _, f := range files {
			start := time.Now()
			result, err := s.Ingest(cmd.Context(), f, caseID, "evitool-cli")
			if err != nil {
				appMetrics.ObserveStage("ingest", "failure", time.Since(start).Seconds())
				appMetrics.RecordStageFailure("ingest", evierrors.KindOf(err).String())
				fmt.Printf("FAILED  %s: %v\n", f, err)
				continue
			}
			appMetrics.ObserveStage("ingest", "success", time.Since(start).Seconds())
			status := "new"
			if result.AlreadyExists {
				status = "linked"
			}
			fmt.Printf("%-6s  %s  sha256=%s\n", status, f, result.SHA256)
		}
		if hashes, err := s.ListCase(caseID); err == nil {
			appMetrics.SetEvidenceCount(caseID, len(hashes))
		}
		return nil
	},
}
