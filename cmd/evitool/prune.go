package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneCaseDryRun bool

var pruneCaseCmd = &cobra.Command{
	Use:   "prune-case <case_id>",
	Short: "Remove evidence whose only case association is the given case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID := args[0]
		s, err := openStore()
		if err != nil {
			return err
		}
		result, err := s.PruneCase(caseID, pruneCaseDryRun)
		if err != nil {
			return err
		}
		verb := "removed"
		if pruneCaseDryRun {
			verb = "would remove"
		}
		for _, hash := range result.Removed {
			fmt.Printf("%s  %s\n", verb, hash)
		}
		fmt.Printf("\n%d hash(es)\n", len(result.Removed))
		return nil
	},
}

func init() {
	pruneCaseCmd.Flags().BoolVar(&pruneCaseDryRun, "dry-run", false, "report what would be removed without removing it")
}
