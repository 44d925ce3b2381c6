package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupDryRun bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove broken hard links and empty case/label directories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		result, err := s.Cleanup(cleanupDryRun)
		if err != nil {
			return err
		}
		verb := "removed"
		if cleanupDryRun {
			verb = "would remove"
		}
		for _, link := range result.BrokenLinksRemoved {
			fmt.Printf("%s broken link  %s\n", verb, link)
		}
		for _, dir := range result.EmptyDirsRemoved {
			fmt.Printf("%s empty dir    %s\n", verb, dir)
		}
		fmt.Printf("\n%d link(s), %d dir(s)\n", len(result.BrokenLinksRemoved), len(result.EmptyDirsRemoved))
		return nil
	},
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "report what would be removed without removing it")
}
