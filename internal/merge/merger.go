// Package merge reconstructs whole entity spans from a stream of token
// classifications.
package merge

import (
	"strings"
	"unicode"

	"github.com/ppiankov/pseudonym/internal/model"
)

// retained lists the punctuation kept inside merged entity text
const retained = ".,'-"

// Normalize removes whitespace and every rune that is neither a letter, a
// digit nor one of the retained punctuation marks.
func Normalize(fragment string) string {
	var b strings.Builder
	b.Grow(len(fragment))
	for _, r := range fragment {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || strings.ContainsRune(retained, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// state is the merge state machine: Idle when typ is Outside, otherwise
// Accumulating(typ, buf).
type state struct {
	typ    model.EntityType
	buf    string
	score  float64
	tokens int
}

var idle = state{typ: model.Outside}

func (s state) accumulating() bool {
	return !s.typ.IsOutside()
}

func (s state) span() model.MergedEntitySpan {
	return model.MergedEntitySpan{
		Type:  s.typ,
		Text:  s.buf,
		Score: s.score / float64(s.tokens),
	}
}

// step advances the state machine by one non-empty fragment. It returns the
// next state and the span flushed by this step, if any.
func step(s state, tag model.Tag, fragment string, score float64) (state, *model.MergedEntitySpan) {
	if s.accumulating() && tag.Kind != model.TagOutside && tag.Type == s.typ {
		return state{typ: s.typ, buf: s.buf + fragment, score: s.score + score, tokens: s.tokens + 1}, nil
	}

	var flushed *model.MergedEntitySpan
	if s.accumulating() {
		sp := s.span()
		flushed = &sp
	}
	if tag.Kind == model.TagOutside {
		return idle, flushed
	}
	return state{typ: tag.Type, buf: fragment, score: score, tokens: 1}, flushed
}

// Merge turns ordered token predictions into ordered entity spans.
//
// Begin and Inside tags of the same type both extend the open span; only a
// type change or an Outside token closes it. Tokens whose normalized text is
// empty are ignored entirely, so punctuation-only fragments never split a span.
func Merge(preds []model.TokenPrediction) []model.MergedEntitySpan {
	var spans []model.MergedEntitySpan
	s := idle

	for _, p := range preds {
		fragment := Normalize(p.Text)
		if fragment == "" {
			continue
		}
		next, flushed := step(s, model.ParseLabel(p.Label), fragment, p.Score)
		if flushed != nil {
			spans = append(spans, *flushed)
		}
		s = next
	}

	if s.accumulating() {
		spans = append(spans, s.span())
	}
	return spans
}
