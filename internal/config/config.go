package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type EmbeddingConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	TimeoutMS int    `toml:"timeout_ms"`
	Retries   int    `toml:"retries"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type StoreConfig struct {
	Backend    string         `toml:"backend"` // "sqlite" or "memgraph"
	SQLitePath string         `toml:"sqlite_path"`
	Memgraph   MemgraphConfig `toml:"memgraph"`
}

// MatchingConfig exposes every threshold the matching engine keeps
// configurable: fuzzy distance, semantic similarity, closure depth,
// numeric tolerance and the equal-priority tie-break rule.
type MatchingConfig struct {
	FuzzyMaxDistance    int                 `toml:"fuzzy_max_distance"`
	SemanticThreshold   float64             `toml:"semantic_threshold"`
	ClosureDepth        int                 `toml:"closure_depth"`
	NumericTolerancePct float64             `toml:"numeric_tolerance_pct"`
	TieBreak            string              `toml:"tie_break"` // "flag" or "lexicographic"
	Aliases             map[string][]string `toml:"aliases"`
}

type ConcurrencyConfig struct {
	Workers int `toml:"workers"`
}

type Config struct {
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Store       StoreConfig       `toml:"store"`
	Matching    MatchingConfig    `toml:"matching"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:    "sqlite",
			SQLitePath: "lattice.sqlite",
			Memgraph:   MemgraphConfig{URI: "bolt://localhost:7687"},
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			TimeoutMS: 10000,
			Retries:   2,
		},
		Matching: MatchingConfig{
			FuzzyMaxDistance:    2,
			SemanticThreshold:   0.72,
			ClosureDepth:        2,
			NumericTolerancePct: 0.5,
			TieBreak:            "flag",
		},
		Concurrency: ConcurrencyConfig{Workers: 4},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "sqlite", "memgraph":
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store.Backend)
	}
	switch c.Matching.TieBreak {
	case "flag", "lexicographic":
	default:
		return fmt.Errorf("unsupported tie_break mode: %s", c.Matching.TieBreak)
	}
	if c.Matching.ClosureDepth < 0 {
		return fmt.Errorf("closure_depth must be >= 0")
	}
	return nil
}

// ApplyEnv overrides file settings from the environment, mirroring how the
// server is configured in deployment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		c.Embedding.Provider = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		c.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		c.Embedding.BaseURL = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Store.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Store.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Store.Memgraph.Password = v
	}
}
