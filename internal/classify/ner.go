package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/pseudonym/internal/model"
)

// NERClassifier calls a token-classification sidecar over HTTP.
// Unlike a best-effort detector it reports every failure: an unreachable
// sidecar must never let raw text through as if it held no entities.
type NERClassifier struct {
	baseURL    string
	httpClient *http.Client
	config     Config
}

type nerRequest struct {
	Text string `json:"text"`
}

type nerResponse struct {
	Predictions []model.TokenPrediction `json:"predictions"`
}

// NewNERClassifier creates a sidecar client for config.BaseURL
// (e.g. "http://ner:8001").
func NewNERClassifier(config Config) (*NERClassifier, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("NER sidecar base URL is required")
	}

	return &NERClassifier{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: newHTTPClient(config, 10*time.Second),
		config:     config,
	}, nil
}

// Name returns the backend name
func (c *NERClassifier) Name() string {
	return "ner"
}

// IsAvailable checks the sidecar health endpoint
func (c *NERClassifier) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		slog.Warn("ner: health request", "err", err)
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("ner: sidecar unreachable", "url", c.baseURL, "err", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("ner: unexpected health status", "code", resp.StatusCode)
		return false
	}
	return true
}

// Predict sends text to the sidecar's /predict endpoint.
// It is safe for concurrent use.
func (c *NERClassifier) Predict(ctx context.Context, text string) ([]model.TokenPrediction, error) {
	body, err := json.Marshal(nerRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("ner: marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.timeout(10*time.Second))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ner: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ner: sidecar unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ner: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var result nerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ner: decode: %w", err)
	}
	return result.Predictions, nil
}
