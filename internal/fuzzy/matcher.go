// Package fuzzy builds separator-tolerant matchers for merged entity text.
//
// Merging strips whitespace and most punctuation from entity fragments, so
// "John" + " Smith" becomes "JohnSmith". A matcher for that span re-admits any
// run of non-alphanumeric characters between letters and ignores case, so it
// finds "John Smith", "John-Smith" and "JOHN SMITH" in the original text.
package fuzzy

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxLength bounds the stripped span length a matcher is built for
const DefaultMaxLength = 256

// separator matches any run of characters that are neither letters nor digits
const separator = `[^\p{L}\p{N}]*`

var (
	// ErrDegenerate is returned when a span has no alphanumeric characters
	ErrDegenerate = errors.New("span has no alphanumeric characters")

	// ErrTooLong is returned when a span exceeds the configured length cap
	ErrTooLong = errors.New("span exceeds maximum matcher length")
)

// Matcher locates every occurrence of one entity in arbitrary text
type Matcher struct {
	re *regexp.Regexp
}

// Strip keeps only letters and numbers
func Strip(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return -1
	}, s)
}

// Build compiles a case-insensitive matcher for spanText. maxLen <= 0 uses
// DefaultMaxLength. Errors are recoverable: callers skip the span.
func Build(spanText string, maxLen int) (*Matcher, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	core := Strip(spanText)
	if core == "" {
		return nil, ErrDegenerate
	}
	if n := utf8.RuneCountInString(core); n > maxLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLong, n, maxLen)
	}

	var b strings.Builder
	b.WriteString("(?i)")
	first := true
	for _, r := range core {
		if !first {
			b.WriteString(separator)
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
		first = false
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compile matcher: %w", err)
	}
	return &Matcher{re: re}, nil
}

// ReplaceAll substitutes repl for every match in text and returns the new
// text with the number of replacements. repl is inserted literally.
func (m *Matcher) ReplaceAll(text, repl string) (string, int) {
	count := 0
	out := m.re.ReplaceAllStringFunc(text, func(string) string {
		count++
		return repl
	})
	return out, count
}

// MatchString reports whether text contains the entity
func (m *Matcher) MatchString(text string) bool {
	return m.re.MatchString(text)
}

// String returns the compiled pattern
func (m *Matcher) String() string {
	return m.re.String()
}
