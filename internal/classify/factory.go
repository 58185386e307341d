package classify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProvider is returned for an unsupported provider name
var ErrUnknownProvider = errors.New("unknown classifier provider")

// NewClassifier creates a classifier based on configuration
func NewClassifier(config Config) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "ner", "":
		return NewNERClassifier(config)

	case "openai":
		return NewOpenAIClassifier(config)

	case "anthropic", "claude":
		return NewAnthropicClassifier(config)

	case "ollama":
		return NewOllamaClassifier(config)

	default:
		return nil, fmt.Errorf("%w: %s (supported: ner, openai, anthropic, ollama)", ErrUnknownProvider, config.Provider)
	}
}
