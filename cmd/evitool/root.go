package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evidence-toolkit/evitool/internal/config"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/metrics"
)

var (
	// Version information (set by build flags).
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	cfg     *config.Config

	// appMetrics is constructed once per process against the default
	// Prometheus registry, regardless of whether the /metrics endpoint is
	// exposed, so every command can record stage outcomes.
	appMetrics *metrics.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "evitool",
	Short: "Evidence Toolkit - content-addressed legal evidence analysis",
	Long: `evitool ingests legal evidence into a content-addressed store, runs
per-type LLM analysis, correlates evidence across a case, and generates
Markdown reports from the result.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			cfg = config.Default()
		}

		logConfig := logging.DefaultConfig(verbose)
		if err := logging.Initialize(logConfig); err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}

		appMetrics = metrics.New()

		if cfg.Metrics.ListenAddr != "" {
			srv := metrics.NewServer(cfg.Metrics.ListenAddr)
			go func() {
				if err := srv.Start(cmd.Context()); err != nil {
					logging.Warn("metrics server stopped", "error", err)
				}
			}()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.evitool/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`evitool {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(retryFailedCmd)
	rootCmd.AddCommand(correlateCmd)
	rootCmd.AddCommand(summariseCmd)
	rootCmd.AddCommand(generateReportsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(pruneCaseCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(syncGraphCmd)
}
