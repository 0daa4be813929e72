package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// OpenAILLMConfig configures an OpenAI-compatible chat completions endpoint.
// Gemini is reachable through its OpenAI-compatible base URL.
type OpenAILLMConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	Model             string  `yaml:"model"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries"`
	Temperature       float64 `yaml:"temperature"`
	CreateTemperature float64 `yaml:"create_temperature"`
}

// LLMConfig selects the language model implementation.
type LLMConfig struct {
	Type   string           `yaml:"type"`
	OpenAI *OpenAILLMConfig `yaml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// CacheConfig selects an embedding cache. Type "none" disables caching.
type CacheConfig struct {
	Type   string       `yaml:"type"`
	SQLite *SQLiteCache `yaml:"sqlite,omitempty"`
	Redis  *RedisCache  `yaml:"redis,omitempty"`
}

// SQLiteCache stores embeddings in a local database file.
type SQLiteCache struct {
	Path string `yaml:"path"`
}

// RedisCache stores embeddings in Redis.
type RedisCache struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	Prefix     string `yaml:"prefix"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// PlannerConfig holds the tunables of the planning pipeline.
type PlannerConfig struct {
	RetrieveTopK      int `yaml:"retrieve_top_k"`
	DefaultGuestCount int `yaml:"default_guest_count"`
	VenueCapacity     int `yaml:"venue_capacity"`
}

// TemplatesConfig points at an optional seed template file. Empty uses the built-in set.
type TemplatesConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig enables OpenTelemetry export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	LLM         LLMConfig         `yaml:"llm"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Cache       CacheConfig       `yaml:"cache"`
	Planner     PlannerConfig     `yaml:"planner"`
	Templates   TemplatesConfig   `yaml:"templates"`
	Logging     LoggingConfig     `yaml:"logging"`
	Tracing     TracingConfig     `yaml:"tracing"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/eventplanner/config.yaml.
// If neither exists, it writes defaults to ~/.config/eventplanner/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "eventplanner", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:    EmbedderConfig{Type: "tfidf"},
		LLM:         LLMConfig{Type: "heuristic"},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Cache:       CacheConfig{Type: "none"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Planner.RetrieveTopK == 0 {
		cfg.Planner.RetrieveTopK = 3
	}
	if cfg.Planner.DefaultGuestCount == 0 {
		cfg.Planner.DefaultGuestCount = 20
	}
	if cfg.Planner.VenueCapacity == 0 {
		cfg.Planner.VenueCapacity = 50
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "eventplanner"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI == nil {
		cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
	}
	if cfg.LLM.Type == "openai" && cfg.LLM.OpenAI == nil {
		cfg.LLM.OpenAI = &OpenAILLMConfig{}
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant == nil {
		cfg.VectorStore.Qdrant = &QdrantConfig{}
	}
	if cfg.Cache.Type == "sqlite" && cfg.Cache.SQLite == nil {
		cfg.Cache.SQLite = &SQLiteCache{}
	}
	if cfg.Cache.Type == "redis" && cfg.Cache.Redis == nil {
		cfg.Cache.Redis = &RedisCache{}
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.MaxRetries == 0 {
			cfg.Embedder.OpenAI.MaxRetries = 5
		}
	}
	if cfg.LLM.Type == "openai" {
		if cfg.LLM.OpenAI.BaseURL == "" {
			cfg.LLM.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.LLM.OpenAI.APIKeyEnv == "" {
			cfg.LLM.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.LLM.OpenAI.Model == "" {
			cfg.LLM.OpenAI.Model = "gpt-4o-mini"
		}
		if cfg.LLM.OpenAI.TimeoutSecs == 0 {
			cfg.LLM.OpenAI.TimeoutSecs = 60
		}
		if cfg.LLM.OpenAI.MaxRetries == 0 {
			cfg.LLM.OpenAI.MaxRetries = 3
		}
		if cfg.LLM.OpenAI.Temperature == 0 {
			cfg.LLM.OpenAI.Temperature = 0.7
		}
		if cfg.LLM.OpenAI.CreateTemperature == 0 {
			cfg.LLM.OpenAI.CreateTemperature = 0.8
		}
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant.URL == "" {
			cfg.VectorStore.Qdrant.URL = "http://localhost:6333"
		}
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "event_templates"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.Cache.Type == "sqlite" && cfg.Cache.SQLite.Path == "" {
		cfg.Cache.SQLite.Path = "embeddings.db"
	}
	if cfg.Cache.Type == "redis" {
		if cfg.Cache.Redis.Addr == "" {
			cfg.Cache.Redis.Addr = "localhost:6379"
		}
		if cfg.Cache.Redis.Prefix == "" {
			cfg.Cache.Redis.Prefix = "eventplanner:embedding:"
		}
	}
}
