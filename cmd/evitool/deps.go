package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/evidence-toolkit/evitool/internal/aggregate"
	"github.com/evidence-toolkit/evitool/internal/analyzer"
	"github.com/evidence-toolkit/evitool/internal/cache"
	"github.com/evidence-toolkit/evitool/internal/correlate"
	"github.com/evidence-toolkit/evitool/internal/dlq"
	"github.com/evidence-toolkit/evitool/internal/llm"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/prompts"
	"github.com/evidence-toolkit/evitool/internal/store"
	"github.com/evidence-toolkit/evitool/internal/store/index"
)

// openStore opens the store at cfg's configured root, using its
// configured link mode and, when cfg.CaseIndex.Driver names a backend,
// its optional secondary index.
func openStore() (*store.Store, error) {
	opts := []store.Option{
		store.WithLinkMode(cfg.Store.LinkMode),
		store.WithLogger(logging.With("component", "store")),
	}

	idx, err := buildIndex()
	if err != nil {
		logging.Warn("case index unavailable, falling back to filesystem scans", "error", err)
	} else if idx != nil {
		opts = append(opts, store.WithIndex(idx))
	}

	return store.Open(cfg.Store.RootDir, opts...)
}

// buildIndex constructs the secondary index named by cfg.CaseIndex.Driver,
// or returns (nil, nil) when the driver is "none" (the default-safe
// choice: the filesystem alone is always authoritative).
func buildIndex() (index.Index, error) {
	switch cfg.CaseIndex.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		return index.NewSQLiteIndex(cfg.CaseIndex.DSN)
	case "postgres":
		return index.NewPostgresIndex(cfg.CaseIndex.DSN)
	default:
		return nil, fmt.Errorf("unknown case_index driver %q", cfg.CaseIndex.Driver)
	}
}

// buildLLMClient wires an llm.Client from cfg.LLM; cfg.LLM.APIKey absent
// still returns a usable client (analyzers fall back gracefully per
// spec §6's environment clause), NewClient itself decides how to treat
// an absent key per provider.
func buildLLMClient(ctx context.Context) (*llm.Client, error) {
	return llm.NewClient(ctx, llm.Config{
		Provider:   cfg.LLM.Provider,
		Model:      cfg.LLM.Model,
		APIKey:     cfg.LLM.APIKey,
		Timeout:    cfg.LLM.Timeout,
		MaxRetries: cfg.LLM.MaxRetries,
		RPM:        int64(cfg.LLM.RPM),
		RedisAddr:  cfg.LLM.RedisAddr,
	})
}

func buildPrompts() (*prompts.Registry, error) {
	return prompts.Load("")
}

// buildAnalyzerDeps assembles analyzer.Deps from the shared store/LLM/
// prompts trio.
func buildAnalyzerDeps(s *store.Store, llmClient *llm.Client, pr *prompts.Registry) analyzer.Deps {
	return analyzer.Deps{
		Store:   s,
		LLM:     llmClient,
		Prompts: pr,
		Log:     logging.With("component", "analyzer"),
	}
}

func buildCorrelateDeps(s *store.Store, llmClient *llm.Client, pr *prompts.Registry) correlate.Deps {
	return correlate.Deps{
		Store:               s,
		LLM:                 llmClient,
		Prompts:             pr,
		Log:                 logging.With("component", "correlate"),
		TemporalWindowHours: cfg.Correlation.TemporalWindowHours,
		GapThresholdHours:   cfg.Correlation.GapThresholdHours,
		GapHighHours:        cfg.Correlation.GapHighHours,
		GapMediumHours:      cfg.Correlation.GapMediumHours,
		ResolveEntities:     true,
		DetectPatterns:      true,
	}
}

func buildAggregateDeps(s *store.Store, llmClient *llm.Client, pr *prompts.Registry) aggregate.Deps {
	return aggregate.Deps{
		Store:          s,
		LLM:            llmClient,
		Prompts:        pr,
		Log:            logging.With("component", "aggregate"),
		ChunkThreshold: cfg.Aggregate.ChunkThreshold,
		ChunkSize:      cfg.Aggregate.ChunkSize,
	}
}

// buildCacheManager opens the local bbolt tier (always) and the remote
// redis tier (only when cfg.Cache.RedisURL is set). A nil return with a
// nil error never happens; callers get a usable Manager or an error.
func buildCacheManager(ctx context.Context) (*cache.Manager, error) {
	local, err := cache.OpenBolt(cfg.Cache.BoltPath)
	if err != nil {
		return nil, err
	}
	var remote *cache.RemoteCache
	if cfg.Cache.RedisURL != "" {
		remote, err = cache.NewRemoteCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			logging.Warn("remote cache unavailable, continuing local-only", "error", err)
			remote = nil
		}
	}
	return cache.NewManager(local, remote), nil
}

// buildDLQ opens the retry queue rooted under the store's directory, so it
// travels with the store rather than needing its own config surface.
func buildDLQ() (*dlq.Queue, error) {
	return dlq.NewQueue(filepath.Join(cfg.Store.RootDir, "dlq"))
}
