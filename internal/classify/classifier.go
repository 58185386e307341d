// Package classify provides token classification backends.
//
// A Classifier turns text into an ordered sequence of BIO-labeled token
// predictions. Backends include an HTTP NER sidecar and LLM providers that are
// prompted to perform the same tagging. The text is never modified.
package classify

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/pseudonym/internal/model"
)

// Classifier defines the interface for token classification backends
type Classifier interface {
	// Name returns the backend name
	Name() string

	// Predict classifies text into ordered token predictions. Errors are
	// fatal for the text unit; implementations must not return partial results.
	Predict(ctx context.Context, text string) ([]model.TokenPrediction, error)

	// IsAvailable checks if the backend is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Config holds classifier backend configuration
type Config struct {
	// Provider name: "ner", "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific, unused by the NER sidecar)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL of the sidecar or a custom endpoint
	BaseURL string

	// Timeout for a single classification call
	Timeout time.Duration

	// MaxTokens for LLM response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "ner",
		BaseURL:   "http://localhost:8001",
		Timeout:   30 * time.Second,
		MaxTokens: 4000,
	}
}

// ConfigFromModel converts model.ClassifierConfig to classify.Config
func ConfigFromModel(c model.ClassifierConfig) Config {
	return Config{
		Provider:   c.Provider,
		Model:      c.Model,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxTokens:  c.MaxTokens,
		HTTPProxy:  c.HTTPProxy,
		HTTPSProxy: c.HTTPSProxy,
	}
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

func (c Config) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 4000
}

// newProxyFunc builds a proxy selector. Without explicit proxies it falls
// back to the environment.
func newProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func newHTTPClient(c Config, fallback time.Duration) *http.Client {
	return &http.Client{
		Timeout: c.timeout(fallback),
		Transport: &http.Transport{
			Proxy: newProxyFunc(c.HTTPProxy, c.HTTPSProxy),
		},
	}
}
