package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evidence-toolkit/evitool/internal/graphstore"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

var syncGraphSummaryPath string

var syncGraphCmd = &cobra.Command{
	Use:   "sync-graph <case_id>",
	Short: "Project a case's correlation analysis into the optional Neo4j graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID := args[0]
		ctx := cmd.Context()

		if cfg.Graph.Neo4jURI == "" {
			return fmt.Errorf("sync-graph requires graph.neo4j_uri to be configured")
		}

		summaryPath := syncGraphSummaryPath
		if summaryPath == "" {
			summaryPath = defaultCaseSummaryPath(caseID)
		}
		var summary schema.CaseSummary
		if err := readJSONFile(summaryPath, &summary); err != nil {
			return fmt.Errorf("read case summary (run `evitool summarise %s` first?): %w", caseID, err)
		}

		client, err := graphstore.NewClient(ctx, cfg.Graph.Neo4jURI, cfg.Graph.Neo4jUser, cfg.Graph.Neo4jPassword)
		if err != nil {
			return err
		}
		defer client.Close(ctx)

		stats, err := client.Sync(ctx, summary.Correlation)
		if err != nil {
			return err
		}
		fmt.Printf("synced case=%s  nodes=%d  edges=%d\n", caseID, stats.Nodes, stats.Edges)
		return nil
	},
}

func init() {
	syncGraphCmd.Flags().StringVar(&syncGraphSummaryPath, "summary", "", "path to a case_summary.json (default: <store_root>/cases/<case_id>/case_summary.json)")
}
