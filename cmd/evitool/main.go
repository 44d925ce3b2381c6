// Command evitool is the CLI surface for the evidence toolkit: ingest,
// analyze, correlate, summarise, generate-reports, stats, cleanup, and
// prune-case (spec §6), plus retry-failed, validate, and sync-graph
// (see SPEC_FULL.md §3). Grounded on
// the teacher's cmd/crisk/main.go cobra bootstrap.
package main

import (
	"fmt"
	"os"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/logging"
)

func main() {
	err := rootCmd.Execute()
	logging.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(evierrors.ExitCode(err))
	}
}
