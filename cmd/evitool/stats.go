package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate counts and sizes across the entire store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		st, err := s.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("evidence:  %d\n", st.EvidenceCount)
		fmt.Printf("analyzed:  %d\n", st.AnalyzedCount)
		fmt.Printf("cases:     %d\n", st.CaseCount)
		fmt.Printf("labels:    %d\n", st.LabelCount)
		fmt.Printf("bytes:     %d\n", st.TotalBytes)
		return nil
	},
}
