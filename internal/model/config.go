package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	Classifier   ClassifierConfig   `yaml:"classifier" mapstructure:"classifier"`
	Anonymize    AnonymizeConfig    `yaml:"anonymize" mapstructure:"anonymize"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

// ClassifierConfig selects and configures the token classification backend
type ClassifierConfig struct {
	Provider   string        `yaml:"provider" mapstructure:"provider"`                       // ner, openai, anthropic, ollama
	Model      string        `yaml:"model,omitempty" mapstructure:"model"`                   // Provider-specific model name
	APIKey     string        `yaml:"api_key,omitempty" mapstructure:"api_key"`               // Prefer env vars
	BaseURL    string        `yaml:"base_url,omitempty" mapstructure:"base_url"`             // Sidecar / custom endpoint
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`                         // Per-call timeout
	MaxTokens  int           `yaml:"max_tokens" mapstructure:"max_tokens"`                   // LLM response budget
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`         // Overrides HTTP_PROXY
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`       // Overrides HTTPS_PROXY
}

// AnonymizeConfig controls the pseudonymization engine
type AnonymizeConfig struct {
	MaxSpanLength int    `yaml:"max_span_length" mapstructure:"max_span_length"` // Longest span (runes) a matcher is built for
	UnitMode      string `yaml:"unit_mode" mapstructure:"unit_mode"`             // line, paragraph, whole
}

// CacheConfig controls prediction caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir,omitempty" mapstructure:"disk_dir"` // Empty disables the disk layer
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitingConfig bounds calls to the classifier
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // Documents processed in parallel
}

// LoggingConfig controls structured logging output
type LoggingConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`                 // debug, info, warn, error
	Format     string `yaml:"format" mapstructure:"format"`               // text, json
	File       string `yaml:"file,omitempty" mapstructure:"file"`         // Rotating log file; empty means stderr
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Classifier: ClassifierConfig{
			Provider:  "ner",
			BaseURL:   "http://localhost:8001",
			Timeout:   30 * time.Second,
			MaxTokens: 4000,
		},
		Anonymize: AnonymizeConfig{
			MaxSpanLength: 256,
			UnitMode:      "paragraph",
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 5,
		},
	}
}
