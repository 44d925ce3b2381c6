package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all toolkit configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Correlation CorrelationConfig `yaml:"correlation"`
	Aggregate   AggregateConfig   `yaml:"aggregate"`
	CaseIndex   CaseIndexConfig   `yaml:"case_index"`
	Cache       CacheConfig       `yaml:"cache"`
	Graph       GraphConfig       `yaml:"graph"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type StoreConfig struct {
	RootDir  string `yaml:"root_dir"`
	LinkMode string `yaml:"link_mode"` // "hardlink" or "copy"
}

type LLMConfig struct {
	Provider   string        `yaml:"provider"` // "openai-responses", "openai-chat", "gemini"; any other value selects openai-responses
	Model      string        `yaml:"model"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RPM        int           `yaml:"rpm"`        // requests per minute, 0 = unlimited
	RedisAddr  string        `yaml:"redis_addr"` // cross-process rate limiting, empty = disabled
}

type ConcurrencyConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type CorrelationConfig struct {
	TemporalWindowHours  int `yaml:"temporal_window_hours"`
	GapThresholdHours    int `yaml:"gap_threshold_hours"`
	GapHighHours         int `yaml:"gap_high_hours"`
	GapMediumHours       int `yaml:"gap_medium_hours"`
}

type AggregateConfig struct {
	ChunkThreshold int `yaml:"chunk_threshold"`
	ChunkSize      int `yaml:"chunk_size"`
}

type CaseIndexConfig struct {
	Driver string `yaml:"driver"` // "sqlite", "postgres", "none"
	DSN    string `yaml:"dsn"`
}

type CacheConfig struct {
	BoltPath string `yaml:"bolt_path"`
	RedisURL string `yaml:"redis_url"` // optional shared tier
	TTL      time.Duration `yaml:"ttl"`
}

type GraphConfig struct {
	Neo4jURI      string `yaml:"neo4j_uri"`
	Neo4jUser     string `yaml:"neo4j_user"`
	Neo4jPassword string `yaml:"neo4j_password"`
}

type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"` // empty disables the /metrics endpoint
}

// Default returns the built-in default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	root := filepath.Join(homeDir, ".evidence-toolkit")
	return &Config{
		Store: StoreConfig{
			RootDir:  filepath.Join(root, "store"),
			LinkMode: "hardlink",
		},
		LLM: LLMConfig{
			Provider:   "openai-responses",
			Model:      "gpt-4o-mini",
			Timeout:    60 * time.Second,
			MaxRetries: 2,
			RPM:        0,
		},
		Concurrency: ConcurrencyConfig{
			MaxConcurrent: 5,
		},
		Correlation: CorrelationConfig{
			TemporalWindowHours: 72,
			GapThresholdHours:   168,
			GapHighHours:        720,
			GapMediumHours:      336,
		},
		Aggregate: AggregateConfig{
			ChunkThreshold: 30,
			ChunkSize:      30,
		},
		CaseIndex: CaseIndexConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(root, "index.db"),
		},
		Cache: CacheConfig{
			BoltPath: filepath.Join(root, "cache.db"),
			TTL:      24 * time.Hour,
		},
		Metrics: MetricsConfig{
			ListenAddr: "",
		},
	}
}

// Load reads configuration from path (or standard search locations when
// empty), applies .env overlays, then environment-variable overrides, in
// that order of increasing precedence.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("store", cfg.Store)
	v.SetDefault("llm", cfg.LLM)
	v.SetDefault("concurrency", cfg.Concurrency)
	v.SetDefault("correlation", cfg.Correlation)
	v.SetDefault("aggregate", cfg.Aggregate)
	v.SetDefault("case_index", cfg.CaseIndex)
	v.SetDefault("cache", cfg.Cache)
	v.SetDefault("graph", cfg.Graph)
	v.SetDefault("metrics", cfg.Metrics)

	v.SetEnvPrefix("EVITOOL")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".evidence-toolkit")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".evidence-toolkit"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadEnvFiles() {
	envFiles := []string{".env.local", ".env"}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".evidence-toolkit", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		_ = godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies the environment-variable precedence described in
// SPEC_FULL.md §1.1: env var, then OS keychain, then config file, for the
// LLM API key; plain env-var overrides for everything else.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	} else {
		km := NewKeyringManager()
		if km.IsAvailable() {
			if keychainKey, err := km.GetAPIKey(); err == nil && keychainKey != "" {
				cfg.LLM.APIKey = keychainKey
			}
		}
	}

	if provider := os.Getenv("EVITOOL_LLM_PROVIDER"); provider != "" {
		cfg.LLM.Provider = provider
	}
	if model := os.Getenv("EVITOOL_LLM_MODEL"); model != "" {
		cfg.LLM.Model = model
	}

	if root := os.Getenv("EVITOOL_STORE_ROOT"); root != "" {
		cfg.Store.RootDir = expandPath(root)
	}
	if mode := os.Getenv("EVITOOL_STORE_LINK_MODE"); mode != "" {
		cfg.Store.LinkMode = mode
	}

	if maxConcurrent := os.Getenv("EVITOOL_MAX_CONCURRENT"); maxConcurrent != "" {
		if n, err := strconv.Atoi(maxConcurrent); err == nil {
			cfg.Concurrency.MaxConcurrent = n
		}
	}

	if window := os.Getenv("EVITOOL_TEMPORAL_WINDOW_HOURS"); window != "" {
		if n, err := strconv.Atoi(window); err == nil {
			cfg.Correlation.TemporalWindowHours = n
		}
	}

	if dsn := os.Getenv("EVITOOL_CASE_INDEX_DSN"); dsn != "" {
		cfg.CaseIndex.DSN = dsn
	}
	if driver := os.Getenv("EVITOOL_CASE_INDEX_DRIVER"); driver != "" {
		cfg.CaseIndex.Driver = driver
	}

	if redisURL := os.Getenv("EVITOOL_REDIS_URL"); redisURL != "" {
		cfg.Cache.RedisURL = redisURL
	}

	if neo4jURI := os.Getenv("EVITOOL_NEO4J_URI"); neo4jURI != "" {
		cfg.Graph.Neo4jURI = neo4jURI
	}
	if neo4jUser := os.Getenv("EVITOOL_NEO4J_USER"); neo4jUser != "" {
		cfg.Graph.Neo4jUser = neo4jUser
	}
	if neo4jPass := os.Getenv("EVITOOL_NEO4J_PASSWORD"); neo4jPass != "" {
		cfg.Graph.Neo4jPassword = neo4jPass
	}

	if addr := os.Getenv("EVITOOL_METRICS_LISTEN_ADDR"); addr != "" {
		cfg.Metrics.ListenAddr = addr
	}
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, path[1:])
}

// Save writes configuration to path as YAML via viper.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("store", c.Store)
	v.Set("llm", c.LLM)
	v.Set("concurrency", c.Concurrency)
	v.Set("correlation", c.Correlation)
	v.Set("aggregate", c.Aggregate)
	v.Set("case_index", c.CaseIndex)
	v.Set("cache", c.Cache)
	v.Set("graph", c.Graph)
	v.Set("metrics", c.Metrics)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
