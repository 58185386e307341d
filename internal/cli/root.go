package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/pseudonym/internal/logging"
	"github.com/ppiankov/pseudonym/internal/model"
)

// Version is set at build time
var Version = "dev"

var (
	cfgFile string
	verbose bool

	logCloser io.Closer
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pseudonym",
	Short: "pseudonym - consistent pseudonymization of free text",
	Long: `pseudonym replaces named entities in free text with stable, type-scoped
placeholders such as PERSON_1 or LOCATION_2.

Entities are found by a token classifier (an NER sidecar or an LLM), merged
into whole spans, and every occurrence of each span is rewritten, tolerating
differences in spacing, punctuation and case. Repeated mentions within a
document always receive the same pseudonym.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command. Interrupts cancel in-flight work.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}()

	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pseudonym %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.pseudonym/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and ENV variables
func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	configureViper(viper.GetViper(), cfgFile)

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// configureViper registers defaults, the config file location and the env
// prefix on v.
func configureViper(v *viper.Viper, file string) {
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".pseudonym"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	// PSEUDONYM_CLASSIFIER_PROVIDER overrides classifier.provider, etc.
	v.SetEnvPrefix("PSEUDONYM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setDefaults(v *viper.Viper) {
	d := model.DefaultConfig()

	v.SetDefault("classifier.provider", d.Classifier.Provider)
	v.SetDefault("classifier.model", d.Classifier.Model)
	v.SetDefault("classifier.api_key", d.Classifier.APIKey)
	v.SetDefault("classifier.base_url", d.Classifier.BaseURL)
	v.SetDefault("classifier.timeout", d.Classifier.Timeout)
	v.SetDefault("classifier.max_tokens", d.Classifier.MaxTokens)
	v.SetDefault("classifier.http_proxy", d.Classifier.HTTPProxy)
	v.SetDefault("classifier.https_proxy", d.Classifier.HTTPSProxy)

	v.SetDefault("anonymize.max_span_length", d.Anonymize.MaxSpanLength)
	v.SetDefault("anonymize.unit_mode", d.Anonymize.UnitMode)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.disk_dir", d.Cache.DiskDir)
	v.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)

	v.SetDefault("rate_limiting.requests_per_second", d.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", d.RateLimiting.BurstSize)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
}

// loadConfig builds the effective configuration from v
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// applyProviderEnv fills provider credentials and endpoints from the
// conventional environment variables when the config leaves them empty.
func applyProviderEnv(c *model.ClassifierConfig) error {
	defaultURL := model.DefaultConfig().Classifier.BaseURL

	switch strings.ToLower(c.Provider) {
	case "", "ner":
		if u := os.Getenv("PSEUDONYM_NER_URL"); u != "" {
			c.BaseURL = u
		}

	case "openai":
		if c.BaseURL == defaultURL {
			c.BaseURL = ""
		}
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if c.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}

	case "anthropic", "claude":
		if c.BaseURL == defaultURL {
			c.BaseURL = ""
		}
		if c.APIKey == "" {
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if c.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}

	case "ollama":
		if c.BaseURL == defaultURL {
			c.BaseURL = ""
		}
		if u := os.Getenv("OLLAMA_BASE_URL"); u != "" {
			c.BaseURL = u
		}
	}
	return nil
}

func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}

	closer, err := logging.Setup(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	logCloser = closer

	slog.Debug("logging initialised", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	return nil
}
