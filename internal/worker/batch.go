package worker

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/ppiankov/pseudonym/internal/model"
)

// Anonymizer anonymizes one whole document against its own registry
type Anonymizer interface {
	AnonymizeDocument(ctx context.Context, source string) (*model.DocumentReport, error)
}

// DocumentJob represents one document anonymization job
type DocumentJob struct {
	ID         string
	Index      int
	Source     string
	Anonymizer Anonymizer
}

// Execute executes the document job
func (j *DocumentJob) Execute(ctx context.Context) Result {
	log := slog.With("job_id", j.ID, "source", j.Source)
	log.Debug("batch: document started")

	report, err := j.Anonymizer.AnonymizeDocument(ctx, j.Source)
	if err != nil {
		log.Warn("batch: document failed", "err", err)
		return &DocumentResult{JobID: j.ID, Index: j.Index, Source: j.Source, Error: err}
	}

	report.JobID = j.ID
	log.Debug("batch: document finished", "units", report.Units, "replaced", report.Replaced)
	return &DocumentResult{JobID: j.ID, Index: j.Index, Source: j.Source, Report: report}
}

// DocumentResult represents the result of a document job
type DocumentResult struct {
	JobID  string
	Index  int
	Source string
	Report *model.DocumentReport
	Error  error
}

// GetError returns the error from the document result
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchProcessor anonymizes multiple documents concurrently. Documents never
// share a registry, so parallel workers cannot race on pseudonym assignment.
type BatchProcessor struct {
	anonymizer  Anonymizer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(anonymizer Anonymizer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		anonymizer:  anonymizer,
		concurrency: concurrency,
	}
}

// ProcessDocuments anonymizes the given sources and returns one result per
// source, in input order. Sources never started because ctx ended carry the
// context error.
func (b *BatchProcessor) ProcessDocuments(ctx context.Context, sources []string) []*DocumentResult {
	if len(sources) == 0 {
		return []*DocumentResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for i, src := range sources {
		job := &DocumentJob{
			ID:         uuid.NewString(),
			Index:      i,
			Source:     src,
			Anonymizer: b.anonymizer,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	byIndex := make([]*DocumentResult, len(sources))
	for _, r := range results {
		dr := r.(*DocumentResult)
		byIndex[dr.Index] = dr
	}
	for i, dr := range byIndex {
		if dr == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("document not processed")
			}
			byIndex[i] = &DocumentResult{Index: i, Source: sources[i], Error: err}
		}
	}

	return byIndex
}

// ProcessFile reads document paths from a list file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*DocumentResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessDocuments(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a file (one per line)
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
