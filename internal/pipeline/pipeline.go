// Package pipeline anonymizes text by classifying it, merging entity spans,
// resolving pseudonyms and rewriting every occurrence in place.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/pseudonym/internal/cache"
	"github.com/ppiankov/pseudonym/internal/classify"
	"github.com/ppiankov/pseudonym/internal/fuzzy"
	"github.com/ppiankov/pseudonym/internal/merge"
	"github.com/ppiankov/pseudonym/internal/model"
	"github.com/ppiankov/pseudonym/internal/registry"
	"github.com/ppiankov/pseudonym/internal/worker"
)

// Pipeline orchestrates classification, merging and replacement.
// A Pipeline holds no pseudonym state; callers pass the registry.
type Pipeline struct {
	classifier classify.Classifier
	limiter    *worker.Limiter // Optional (nil disables limiting)
	maxSpanLen int
	unitMode   UnitMode
}

// NewPipeline creates a pipeline with the classifier, cache and rate
// limiter described by cfg.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	clf, err := classify.NewClassifier(classify.ConfigFromModel(cfg.Classifier))
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	if c := cache.New(cfg.Cache); c != nil {
		clf = classify.NewCached(clf, c, 0, cfg.Classifier.Model)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	return NewWithClassifier(clf, limiter, cfg.Anonymize)
}

// NewWithClassifier creates a pipeline around an existing classifier
func NewWithClassifier(clf classify.Classifier, limiter *worker.Limiter, cfg model.AnonymizeConfig) (*Pipeline, error) {
	mode, err := ParseUnitMode(cfg.UnitMode)
	if err != nil {
		return nil, err
	}

	maxLen := cfg.MaxSpanLength
	if maxLen <= 0 {
		maxLen = fuzzy.DefaultMaxLength
	}

	return &Pipeline{
		classifier: clf,
		limiter:    limiter,
		maxSpanLen: maxLen,
		unitMode:   mode,
	}, nil
}

// Classifier returns the classification backend
func (p *Pipeline) Classifier() classify.Classifier {
	return p.classifier
}

// UnitStats counts what happened to the spans of one text unit
type UnitStats struct {
	Spans    int // Merged spans found
	Replaced int // Occurrences rewritten
	Skipped  int // Spans without a pseudonym or matcher
}

func (s *UnitStats) add(o UnitStats) {
	s.Spans += o.Spans
	s.Replaced += o.Replaced
	s.Skipped += o.Skipped
}

// ProcessText anonymizes one text unit against reg.
//
// Spans are applied in document order and each one rewrites the working copy
// seen by the next, so when two spans match overlapping text the earlier span
// wins. A classification failure returns an error and no text; the caller
// must not fall back to the original.
func (p *Pipeline) ProcessText(ctx context.Context, text string, reg *registry.Registry) (string, error) {
	out, _, err := p.processText(ctx, text, reg)
	return out, err
}

func (p *Pipeline) processText(ctx context.Context, text string, reg *registry.Registry) (string, UnitStats, error) {
	var stats UnitStats
	if strings.TrimSpace(text) == "" {
		return text, stats, nil
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, p.classifier.Name()); err != nil {
			return "", stats, fmt.Errorf("rate limit: %w", err)
		}
	}

	preds, err := p.classifier.Predict(ctx, text)
	if err != nil {
		return "", stats, fmt.Errorf("classify unit: %w", err)
	}

	spans := merge.Merge(preds)
	stats.Spans = len(spans)

	out := text
	for _, span := range spans {
		// Punctuation-only spans are dropped silently and never registered
		if fuzzy.Strip(span.Text) == "" {
			stats.Skipped++
			continue
		}

		pseudonym, ok := reg.Resolve(span.Type, span.Text)
		if !ok {
			stats.Skipped++
			continue
		}

		m, err := fuzzy.Build(span.Text, p.maxSpanLen)
		if err != nil {
			slog.Warn("pipeline: span skipped", "type", span.Type, "len", len(span.Text), "err", err)
			stats.Skipped++
			continue
		}

		var n int
		out, n = m.ReplaceAll(out, pseudonym)
		stats.Replaced += n
	}

	slog.Debug("pipeline: unit anonymized",
		"classifier", p.classifier.Name(),
		"spans", stats.Spans,
		"replaced", stats.Replaced,
		"skipped", stats.Skipped,
	)
	return out, stats, nil
}

// ProcessUnits anonymizes the units of one document sequentially against one
// registry. On error or cancellation no output is returned; pseudonyms
// already assigned stay valid in reg.
func (p *Pipeline) ProcessUnits(ctx context.Context, units []string, reg *registry.Registry) ([]string, error) {
	out, _, err := p.processUnits(ctx, units, reg)
	return out, err
}

func (p *Pipeline) processUnits(ctx context.Context, units []string, reg *registry.Registry) ([]string, UnitStats, error) {
	var total UnitStats
	out := make([]string, len(units))

	for i, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, total, fmt.Errorf("unit %d: %w", i, err)
		}
		anon, stats, err := p.processText(ctx, u, reg)
		if err != nil {
			return nil, total, fmt.Errorf("unit %d: %w", i, err)
		}
		out[i] = anon
		total.add(stats)
	}
	return out, total, nil
}

// ProcessDocument anonymizes doc with a fresh registry and returns the
// rewritten text together with a report.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc *Document) (*model.DocumentReport, string, error) {
	if doc == nil {
		return nil, "", errors.New("nil document")
	}

	reg := registry.New()
	units, seps := SplitUnits(doc.Text, p.unitMode)

	anon, stats, err := p.processUnits(ctx, units, reg)
	if err != nil {
		return nil, "", fmt.Errorf("anonymize %s: %w", doc.Source, err)
	}

	report := &model.DocumentReport{
		Source:      doc.Source,
		ProcessedAt: time.Now().UTC(),
		Units:       len(units),
		Spans:       stats.Spans,
		Replaced:    stats.Replaced,
		Skipped:     stats.Skipped,
		Pseudonyms:  reg.Entries(),
	}
	return report, JoinUnits(anon, seps), nil
}

// AnonymizeDocument reads and anonymizes the document at source. The
// rewritten text is returned in the report.
func (p *Pipeline) AnonymizeDocument(ctx context.Context, source string) (*model.DocumentReport, error) {
	doc, err := ReadDocument(source)
	if err != nil {
		return nil, err
	}

	report, text, err := p.ProcessDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	report.Anonymized = text
	return report, nil
}

// UnitMode returns how documents are split into units
func (p *Pipeline) UnitMode() UnitMode {
	return p.unitMode
}
