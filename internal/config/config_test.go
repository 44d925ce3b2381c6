package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "hardlink", cfg.Store.LinkMode)
	assert.Equal(t, 5, cfg.Concurrency.MaxConcurrent)
	assert.Equal(t, 72, cfg.Correlation.TemporalWindowHours)
	assert.Equal(t, 168, cfg.Correlation.GapThresholdHours)
	assert.Equal(t, 30, cfg.Aggregate.ChunkThreshold)
	assert.Equal(t, 30, cfg.Aggregate.ChunkSize)
	assert.Equal(t, "openai-responses", cfg.LLM.Provider)
}

func TestLoad_MissingExplicitFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir + "/does-not-exist.yaml")
	require.Error(t, err)
	_ = cfg
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-key-value")
	t.Setenv("EVITOOL_MAX_CONCURRENT", "9")
	t.Setenv("EVITOOL_TEMPORAL_WINDOW_HOURS", "48")

	cfg := Default()
	applyEnvOverrides(cfg)

	assert.Equal(t, "sk-test-key-value", cfg.LLM.APIKey)
	assert.Equal(t, 9, cfg.Concurrency.MaxConcurrent)
	assert.Equal(t, 48, cfg.Correlation.TemporalWindowHours)
}

func TestExpandPath(t *testing.T) {
	assert.Equal(t, "/already/absolute", expandPath("/already/absolute"))
	assert.Equal(t, "", expandPath(""))

	expanded := expandPath("~/foo")
	assert.NotEqual(t, "~/foo", expanded)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "(not set)", MaskAPIKey(""))
	assert.Equal(t, "***", MaskAPIKey("short"))
	assert.Equal(t, "sk-proj...f00d", MaskAPIKey("sk-projABCDEFGHIJKLMNOPQRf00d"))
}
