// Package config loads application configuration from YAML with sane
// defaults for every field.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds settings for the OpenAI API.
type OpenAIConfig struct {
	// BaseURL overrides the API endpoint, for proxies and compatible servers.
	BaseURL string `yaml:"base_url,omitempty"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv      string `yaml:"api_key_env"`
	LLMModel       string `yaml:"llm_model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// StoreConfig configures the vector store.
type StoreConfig struct {
	Path      string `yaml:"path"`
	Dimension int    `yaml:"dimension"`
	// IndexType is "flat" for exact search or "ivf" for approximate.
	IndexType string `yaml:"index_type"`
}

// RetrievalConfig configures querying and ingestion.
type RetrievalConfig struct {
	TopK         int `yaml:"top_k"`
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// Config is the root configuration.
type Config struct {
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Store     StoreConfig     `yaml:"store"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// Load reads a config file. A missing file yields defaults; a present but
// malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// APIKey resolves the OpenAI API key from the configured environment
// variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.OpenAI.APIKeyEnv)
}

// Approximate reports whether the approximate index is configured.
func (c *Config) Approximate() bool {
	return c.Store.IndexType == "ivf"
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			APIKeyEnv:      "OPENAI_API_KEY",
			LLMModel:       "gpt-4o",
			EmbeddingModel: "text-embedding-3-large",
		},
		Store: StoreConfig{
			Path:      "vector_store/documents.index",
			Dimension: 1536,
			IndexType: "flat",
		},
		Retrieval: RetrievalConfig{
			TopK:         5,
			ChunkSize:    1024,
			ChunkOverlap: 200,
		},
	}
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = def.OpenAI.APIKeyEnv
	}
	if cfg.OpenAI.LLMModel == "" {
		cfg.OpenAI.LLMModel = def.OpenAI.LLMModel
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = def.OpenAI.EmbeddingModel
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
	if cfg.Store.Dimension == 0 {
		cfg.Store.Dimension = def.Store.Dimension
	}
	if cfg.Store.IndexType == "" {
		cfg.Store.IndexType = def.Store.IndexType
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = def.Retrieval.ChunkSize
	}
}

func validate(cfg *Config) error {
	if cfg.Store.Dimension <= 0 {
		return fmt.Errorf("store dimension must be positive, got %d", cfg.Store.Dimension)
	}
	if cfg.Store.IndexType != "flat" && cfg.Store.IndexType != "ivf" {
		return fmt.Errorf("store index_type must be %q or %q, got %q", "flat", "ivf", cfg.Store.IndexType)
	}
	if cfg.Retrieval.ChunkOverlap >= cfg.Retrieval.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			cfg.Retrieval.ChunkOverlap, cfg.Retrieval.ChunkSize)
	}
	return nil
}
