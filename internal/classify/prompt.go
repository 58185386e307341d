package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/pseudonym/internal/model"
)

const systemPrompt = `You are a named-entity tagger used for anonymization. You never rewrite or summarize text.`

const taggingInstructions = `Split the text below into tokens, in order, and tag each token with a BIO label.

RULES:
1. Concatenating the "text" fields of all tokens must reproduce the input exactly, including whitespace and punctuation. Keep leading spaces on the token that follows them.
2. Use "B-<TYPE>" for the first token of an entity, "I-<TYPE>" for following tokens of the same entity and "O" for everything else.
3. Entity types: PERSON, LOCATION, ORGANIZATION, EMAIL, PHONE, ID, DATE, URL.
4. "score" is your confidence in [0,1].

Reply with JSON only, in this shape:
{"predictions":[{"text":"John","label":"B-PERSON","score":0.98},{"text":" lives","label":"O","score":0.99}]}

Text:
`

// BuildPrompt constructs the tagging prompt for text
func BuildPrompt(text string) string {
	return taggingInstructions + text
}

var (
	thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFenceRe  = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

// ErrNoPredictions is returned when a model reply holds no parseable predictions
var ErrNoPredictions = errors.New("no predictions in response")

type predictionsEnvelope struct {
	Predictions []model.TokenPrediction `json:"predictions"`
}

// ParsePredictions extracts token predictions from a model reply. It accepts
// {"predictions":[...]} or a bare array, optionally wrapped in a code fence or
// preceded by a <think> block.
func ParsePredictions(raw string) ([]model.TokenPrediction, error) {
	content := strings.TrimSpace(thinkBlockRe.ReplaceAllString(raw, ""))
	if m := codeFenceRe.FindStringSubmatch(content); m != nil {
		content = m[1]
	}
	if content == "" {
		return nil, ErrNoPredictions
	}

	if strings.HasPrefix(content, "{") {
		var env predictionsEnvelope
		if err := json.Unmarshal([]byte(content), &env); err != nil {
			return nil, fmt.Errorf("decode predictions: %w", err)
		}
		if env.Predictions == nil {
			return nil, ErrNoPredictions
		}
		return env.Predictions, nil
	}

	start, end := strings.Index(content, "["), strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, ErrNoPredictions
	}
	var preds []model.TokenPrediction
	if err := json.Unmarshal([]byte(content[start:end+1]), &preds); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	return preds, nil
}
