package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pseudonym/internal/model"
	"github.com/ppiankov/pseudonym/internal/pipeline"
	"github.com/ppiankov/pseudonym/internal/worker"
)

var (
	concurrency    int
	batchTimeout   time.Duration
	includeMapping bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Anonymize multiple documents from a list file in parallel",
	Long: `Batch anonymizes every document listed in the input file (one path per
line, '#' starts a comment). Documents are processed concurrently and each one
gets its own pseudonym registry, so placeholders are only consistent within a
document.

One JSON report per document is written to stdout, in input order.

Example:
  pseudonym batch docs.txt
  pseudonym batch docs.txt --concurrency 8 --timeout 30m
  pseudonym batch docs.txt --include-mapping > reports.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addClassifierFlags(batchCmd)
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&includeMapping, "include-mapping", false, "include original entity text in reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "⚙️  Anonymizing documents from %s with %d workers (%s)...\n",
		file, cfg.Concurrency.Workers, p.Classifier().Name())

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	failures := 0

	for _, result := range results {
		report := batchReport(result, includeMapping)
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
		} else {
			fmt.Fprintf(os.Stderr, "✓ %s (%d replaced)\n", result.Source, report.Replaced)
		}

		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "\nTotal: %d  Success: %d  Failures: %d\n", len(results), len(results)-failures, failures)

	if failures > 0 {
		return fmt.Errorf("%d of %d documents failed", failures, len(results))
	}
	return nil
}

// batchReport converts a worker result into the report written to stdout.
// Original entity text is dropped unless withOriginals is set.
func batchReport(result *worker.DocumentResult, withOriginals bool) *model.DocumentReport {
	if result.Error != nil {
		return &model.DocumentReport{
			JobID:  result.JobID,
			Source: result.Source,
			Error:  result.Error.Error(),
		}
	}

	report := *result.Report
	if !withOriginals {
		redacted := make([]model.PseudonymEntry, len(report.Pseudonyms))
		for i, e := range report.Pseudonyms {
			redacted[i] = model.PseudonymEntry{Type: e.Type, Pseudonym: e.Pseudonym}
		}
		report.Pseudonyms = redacted
	}
	return &report
}
