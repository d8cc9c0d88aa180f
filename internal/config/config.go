// Package config provides configuration loading and validation for the
// service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/employee-cv/internal/logger"
)

// Config is the full application configuration. It can be loaded from a JSON
// or YAML file; every field is optional and falls back to Default().
type Config struct {
	Sources   SourcesConfig   `json:"sources" yaml:"sources"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Index     IndexConfig     `json:"index" yaml:"index"`
	Feedback  FeedbackConfig  `json:"feedback" yaml:"feedback"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
	Logger    logger.Config   `json:"logger" yaml:"logger"`
}

// SourcesConfig locates the three employee feeds. When DatabaseURL is set the
// feeds are read from Postgres instead of files.
type SourcesConfig struct {
	HRMPath     string `json:"hrm_path" yaml:"hrm_path"`
	XOPSPath    string `json:"xops_path" yaml:"xops_path"`
	CustomPath  string `json:"custom_path" yaml:"custom_path"`
	DatabaseURL string `json:"database_url" yaml:"database_url"`
}

// Configured reports whether any feed source is set
func (s SourcesConfig) Configured() bool {
	return s.DatabaseURL != "" || s.HRMPath != "" || s.XOPSPath != "" || s.CustomPath != ""
}

// LLMConfig configures the generation collaborator
type LLMConfig struct {
	Provider    string            `json:"provider" yaml:"provider" validate:"required,oneof=gemini openai"`
	BaseURL     string            `json:"base_url" yaml:"base_url" validate:"omitempty,url"`
	Models      map[string]string `json:"models" yaml:"models"`
	Temperature float32           `json:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	APIKeyEnv   string            `json:"api_key_env" yaml:"api_key_env"`
	Timeout     string            `json:"timeout" yaml:"timeout"`
}

// APIKey reads the provider key from the configured environment variable
func (c LLMConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// TimeoutDuration returns the per-call timeout
func (c LLMConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 60*time.Second)
}

// CacheConfig selects where embedding vectors are cached
type CacheConfig struct {
	Backend  string `json:"backend" yaml:"backend" validate:"omitempty,oneof=none memory redis"`
	RedisURL string `json:"redis_url" yaml:"redis_url" validate:"required_if=Backend redis"`
	TTL      string `json:"ttl" yaml:"ttl"`
}

// TTLDuration returns the cache entry lifetime; zero keeps entries forever
func (c CacheConfig) TTLDuration() time.Duration {
	return parseDuration(c.TTL, 0)
}

// EmbeddingConfig configures the embedding collaborator
type EmbeddingConfig struct {
	Provider   string      `json:"provider" yaml:"provider" validate:"required,oneof=gemini openai hash"`
	Model      string      `json:"model" yaml:"model"`
	BaseURL    string      `json:"base_url" yaml:"base_url" validate:"omitempty,url"`
	APIKeyEnv  string      `json:"api_key_env" yaml:"api_key_env"`
	Dimensions int         `json:"dimensions" yaml:"dimensions" validate:"gte=0"`
	Timeout    string      `json:"timeout" yaml:"timeout"`
	Cache      CacheConfig `json:"cache" yaml:"cache"`
}

// APIKey reads the provider key from the configured environment variable
func (c EmbeddingConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// TimeoutDuration returns the per-call timeout
func (c EmbeddingConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// IndexConfig tunes record serialization and lookups
type IndexConfig struct {
	Mode     string  `json:"mode" yaml:"mode" validate:"omitempty,oneof=summary detailed"`
	TopK     int     `json:"top_k" yaml:"top_k" validate:"gte=1"`
	MinScore float64 `json:"min_score" yaml:"min_score" validate:"gte=0,lte=1"`
}

// FeedbackConfig sets the recency decay applied to feedback history
type FeedbackConfig struct {
	Decay float64 `json:"decay" yaml:"decay" validate:"gt=0,lte=1"`
	Floor float64 `json:"floor" yaml:"floor" validate:"gte=0,lte=1"`
}

// ServerConfig configures the HTTP adapter
type ServerConfig struct {
	Port           int      `json:"port" yaml:"port" validate:"gte=1,lte=65535"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
	LoadOnStart    bool     `json:"load_on_start" yaml:"load_on_start"`
}

// RateLimitConfig configures per-client request limits
type RateLimitConfig struct {
	Enabled         bool     `json:"enabled" yaml:"enabled"`
	DefaultLimit    int      `json:"default_limit" yaml:"default_limit" validate:"gte=0"`
	DefaultWindow   string   `json:"default_window" yaml:"default_window"`
	CleanupInterval string   `json:"cleanup_interval" yaml:"cleanup_interval"`
	Whitelist       []string `json:"whitelist" yaml:"whitelist"`
	Blacklist       []string `json:"blacklist" yaml:"blacklist"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "gemini",
			Temperature: 0.1,
			APIKeyEnv:   "GEMINI_API_KEY",
			Timeout:     "60s",
		},
		Embedding: EmbeddingConfig{
			Provider:  "gemini",
			APIKeyEnv: "GEMINI_API_KEY",
			Timeout:   "30s",
			Cache:     CacheConfig{Backend: "memory"},
		},
		Index: IndexConfig{
			Mode:     "summary",
			TopK:     5,
			MinScore: 0.4,
		},
		Feedback: FeedbackConfig{
			Decay: 0.5,
			Floor: 0.1,
		},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   "1m",
			CleanupInterval: "5m",
		},
		Logger: logger.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a configuration file on top of Default(). The format is chosen
// by extension: .yaml and .yml are YAML, anything else is JSON.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.fillProviderDefaults()
	return cfg, nil
}

// ApplyEnv overrides configuration values with environment variables
func (c *Config) ApplyEnv() {
	setString(&c.Sources.HRMPath, "HRM_PATH")
	setString(&c.Sources.XOPSPath, "XOPS_PATH")
	setString(&c.Sources.CustomPath, "CUSTOM_PATH")
	setString(&c.Sources.DatabaseURL, "DATABASE_URL")

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.Timeout, "LLM_TIMEOUT")

	setString(&c.Embedding.Provider, "EMBEDDING_PROVIDER")
	setString(&c.Embedding.Model, "EMBEDDING_MODEL")
	setString(&c.Embedding.BaseURL, "EMBEDDING_BASE_URL")
	if url := os.Getenv("REDIS_URL"); url != "" {
		c.Embedding.Cache.Backend = "redis"
		c.Embedding.Cache.RedisURL = url
	}

	setString(&c.Index.Mode, "INDEX_MODE")
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		c.Server.Port = port
	}
	if enabled, err := strconv.ParseBool(os.Getenv("RATE_LIMIT_ENABLED")); err == nil {
		c.RateLimit.Enabled = enabled
	}
	setString(&c.Logger.Level, "LOG_LEVEL")
	setString(&c.Logger.Format, "LOG_FORMAT")

	c.fillProviderDefaults()
}

// fillProviderDefaults points an OpenAI-compatible provider at its own key
// variable when the Gemini default is still in place.
func (c *Config) fillProviderDefaults() {
	if c.LLM.Provider == "openai" && (c.LLM.APIKeyEnv == "" || c.LLM.APIKeyEnv == "GEMINI_API_KEY") {
		c.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Embedding.Provider == "openai" && (c.Embedding.APIKeyEnv == "" || c.Embedding.APIKeyEnv == "GEMINI_API_KEY") {
		c.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	durations := map[string]string{
		"llm.timeout":                 c.LLM.Timeout,
		"embedding.timeout":           c.Embedding.Timeout,
		"embedding.cache.ttl":         c.Embedding.Cache.TTL,
		"rate_limit.default_window":   c.RateLimit.DefaultWindow,
		"rate_limit.cleanup_interval": c.RateLimit.CleanupInterval,
	}
	for name, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("config error: '%s' is not a valid duration: %q", name, value)
		}
	}

	return nil
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
