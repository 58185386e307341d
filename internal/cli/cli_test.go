package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/pseudonym/internal/model"
	"github.com/ppiankov/pseudonym/internal/registry"
	"github.com/ppiankov/pseudonym/internal/worker"
)

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.Classifier.Provider != want.Classifier.Provider || cfg.Anonymize.MaxSpanLength != want.Anonymize.MaxSpanLength {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `classifier:
  provider: ollama
  model: qwen2.5:7b
  timeout: 45s
anonymize:
  unit_mode: line
cache:
  memory_ttl: 5m
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PSEUDONYM_CONCURRENCY_WORKERS", "9")

	v := viper.New()
	configureViper(v, path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Classifier.Provider != "ollama" || cfg.Classifier.Model != "qwen2.5:7b" {
		t.Errorf("classifier not read from file: %+v", cfg.Classifier)
	}
	if cfg.Classifier.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Classifier.Timeout)
	}
	if cfg.Cache.MemoryTTL != 5*time.Minute {
		t.Errorf("MemoryTTL = %v, want 5m", cfg.Cache.MemoryTTL)
	}
	if cfg.Anonymize.UnitMode != "line" {
		t.Errorf("UnitMode = %q, want line", cfg.Anonymize.UnitMode)
	}
	if cfg.Anonymize.MaxSpanLength != 256 {
		t.Errorf("MaxSpanLength default lost: %d", cfg.Anonymize.MaxSpanLength)
	}
	if cfg.Concurrency.Workers != 9 {
		t.Errorf("Workers = %d, want 9 from env", cfg.Concurrency.Workers)
	}
}

func TestApplyProviderEnv(t *testing.T) {
	defaultURL := model.DefaultConfig().Classifier.BaseURL

	t.Run("openai key from env", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		c := model.ClassifierConfig{Provider: "openai", BaseURL: defaultURL}
		if err := applyProviderEnv(&c); err != nil {
			t.Fatalf("applyProviderEnv failed: %v", err)
		}
		if c.APIKey != "sk-test" || c.BaseURL != "" {
			t.Errorf("unexpected config: %+v", c)
		}
	})

	t.Run("anthropic key missing", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		c := model.ClassifierConfig{Provider: "anthropic"}
		if err := applyProviderEnv(&c); err == nil {
			t.Fatal("expected error without API key")
		}
	})

	t.Run("ollama base url", func(t *testing.T) {
		t.Setenv("OLLAMA_BASE_URL", "http://gpu:11434")
		c := model.ClassifierConfig{Provider: "ollama", BaseURL: defaultURL}
		if err := applyProviderEnv(&c); err != nil {
			t.Fatalf("applyProviderEnv failed: %v", err)
		}
		if c.BaseURL != "http://gpu:11434" {
			t.Errorf("BaseURL = %q", c.BaseURL)
		}
	})

	t.Run("ner url", func(t *testing.T) {
		t.Setenv("PSEUDONYM_NER_URL", "http://ner:9000")
		c := model.ClassifierConfig{Provider: "ner", BaseURL: defaultURL}
		if err := applyProviderEnv(&c); err != nil {
			t.Fatalf("applyProviderEnv failed: %v", err)
		}
		if c.BaseURL != "http://ner:9000" {
			t.Errorf("BaseURL = %q", c.BaseURL)
		}
	})
}

func TestBatchReport(t *testing.T) {
	result := &worker.DocumentResult{
		JobID:  "job-1",
		Source: "a.txt",
		Report: &model.DocumentReport{
			Source:   "a.txt",
			Replaced: 2,
			Pseudonyms: []model.PseudonymEntry{
				{Type: "PERSON", Pseudonym: "PERSON_1", Original: "JohnSmith"},
			},
		},
	}

	redacted := batchReport(result, false)
	if redacted.Pseudonyms[0].Original != "" {
		t.Errorf("original leaked without --include-mapping")
	}
	if result.Report.Pseudonyms[0].Original != "JohnSmith" {
		t.Errorf("batchReport mutated the worker result")
	}

	full := batchReport(result, true)
	if full.Pseudonyms[0].Original != "JohnSmith" {
		t.Errorf("original missing with --include-mapping")
	}

	failed := batchReport(&worker.DocumentResult{JobID: "job-2", Source: "b.txt", Error: errors.New("boom")}, false)
	if failed.Error != "boom" || failed.Source != "b.txt" {
		t.Errorf("unexpected failed report: %+v", failed)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.Classifier.Provider != "ner" {
		t.Errorf("Provider = %q", cfg.Classifier.Provider)
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestWriteMapping(t *testing.T) {
	reg := registry.New()
	reg.Resolve("PERSON", "JohnSmith")

	path := filepath.Join(t.TempDir(), "mapping.yaml")
	if err := writeMapping(path, reg); err != nil {
		t.Fatalf("writeMapping failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mapping file mode = %v, want 0600", info.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "PERSON_1") {
		t.Errorf("mapping missing pseudonym: %s", data)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":                    "",
		"short":               "****",
		"sk-abcdefghijklmnop": "sk-a****mnop",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}
