package classify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ppiankov/pseudonym/internal/cache"
	"github.com/ppiankov/pseudonym/internal/model"
)

// Cached memoizes successful predictions of an inner classifier.
// Failures are never cached.
type Cached struct {
	inner     Classifier
	cache     cache.Cache
	ttl       time.Duration
	namespace string
}

// NewCached wraps inner. namespace separates entries of different models
// served by the same backend.
func NewCached(inner Classifier, c cache.Cache, ttl time.Duration, namespace string) *Cached {
	return &Cached{
		inner:     inner,
		cache:     c,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Name returns the inner backend name
func (c *Cached) Name() string {
	return c.inner.Name()
}

// IsAvailable delegates to the inner classifier
func (c *Cached) IsAvailable(ctx context.Context) bool {
	return c.inner.IsAvailable(ctx)
}

// Predict returns cached predictions for text or classifies and stores them
func (c *Cached) Predict(ctx context.Context, text string) ([]model.TokenPrediction, error) {
	key := cache.CacheKey(c.inner.Name(), c.namespace, text)

	if data, ok := c.cache.Get(key); ok {
		var preds []model.TokenPrediction
		if err := json.Unmarshal(data, &preds); err == nil {
			slog.Debug("classify: cache hit", "classifier", c.inner.Name())
			return preds, nil
		}
		_ = c.cache.Delete(key)
	}

	preds, err := c.inner.Predict(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(preds); err == nil {
		if err := c.cache.Set(key, data, c.ttl); err != nil {
			slog.Warn("classify: cache store failed", "err", err)
		}
	}
	return preds, nil
}
