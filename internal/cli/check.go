package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pseudonym/internal/classify"
)

var checkTimeout time.Duration

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured classifier is reachable",
	Long: `Check builds the configured classifier and reports whether it is available.
For the NER sidecar this calls its health endpoint; for LLM providers it
verifies the credentials or model.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&provider, "provider", "", "classifier provider: ner, openai, anthropic, ollama")
	checkCmd.Flags().StringVar(&modelName, "model", "", "classifier model name")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "availability check timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	clf, err := classify.NewClassifier(classify.ConfigFromModel(cfg.Classifier))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	target := cfg.Classifier.BaseURL
	if cfg.Classifier.Model != "" {
		target = cfg.Classifier.Model
	}

	if !clf.IsAvailable(ctx) {
		return fmt.Errorf("classifier %s (%s) is not available", clf.Name(), target)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ classifier %s (%s) is available\n", clf.Name(), target)
	return nil
}
