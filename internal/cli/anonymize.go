package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/pseudonym/internal/model"
	"github.com/ppiankov/pseudonym/internal/pipeline"
	"github.com/ppiankov/pseudonym/internal/registry"
)

var (
	unitMode    string
	provider    string
	modelName   string
	mappingPath string
	timeout     time.Duration
	noCache     bool
)

// anonymizeCmd represents the anonymize command
var anonymizeCmd = &cobra.Command{
	Use:   "anonymize [file|-]",
	Short: "Anonymize a single text document",
	Long: `Anonymize reads a plain-text document, replaces every detected entity with
a stable pseudonym and writes the result to stdout.

All units (lines or paragraphs) of the document share one pseudonym registry,
so repeated mentions of the same entity get the same placeholder.

Example:
  pseudonym anonymize notes.txt
  cat notes.txt | pseudonym anonymize -
  pseudonym anonymize notes.txt --provider openai --model gpt-4o-mini
  pseudonym anonymize notes.txt --mapping mapping.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnonymize,
}

func init() {
	rootCmd.AddCommand(anonymizeCmd)

	addClassifierFlags(anonymizeCmd)
	anonymizeCmd.Flags().StringVar(&mappingPath, "mapping", "", "write the pseudonym mapping (contains originals) to this YAML file")
	anonymizeCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall timeout")
}

// addClassifierFlags registers the flags shared by anonymize and batch
func addClassifierFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&unitMode, "unit", "", "unit mode: line, paragraph, whole (default from config)")
	cmd.Flags().StringVar(&provider, "provider", "", "classifier provider: ner, openai, anthropic, ollama")
	cmd.Flags().StringVar(&modelName, "model", "", "classifier model name")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable prediction cache")
}

// buildConfig loads the effective configuration and applies command flags
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("unit") {
		cfg.Anonymize.UnitMode = unitMode
	}
	if flags.Changed("provider") {
		cfg.Classifier.Provider = provider
	}
	if flags.Changed("model") {
		cfg.Classifier.Model = modelName
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	if err := applyProviderEnv(&cfg.Classifier); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAnonymize(cmd *cobra.Command, args []string) error {
	source := "-"
	if len(args) == 1 {
		source = args[0]
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	doc, err := pipeline.ReadDocument(source)
	if err != nil {
		return err
	}

	reg := registry.New()
	units, seps := pipeline.SplitUnits(doc.Text, p.UnitMode())

	slog.Debug("anonymize: start", "source", source, "units", len(units), "classifier", p.Classifier().Name())

	out, err := p.ProcessUnits(ctx, units, reg)
	if err != nil {
		return fmt.Errorf("anonymize %s: %w", source, err)
	}

	if _, err := fmt.Fprint(cmd.OutOrStdout(), pipeline.JoinUnits(out, seps)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if mappingPath != "" {
		if err := writeMapping(mappingPath, reg); err != nil {
			return err
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %d pseudonyms assigned across %d units\n", reg.Len(), len(units))
	}
	return nil
}

// writeMapping exports the registry. The file reveals the originals, so it
// is created owner-only.
func writeMapping(path string, reg *registry.Registry) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create mapping file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close mapping file: %w", closeErr)
		}
	}()

	if err := reg.WriteYAML(f); err != nil {
		return fmt.Errorf("write mapping: %w", err)
	}
	return nil
}
