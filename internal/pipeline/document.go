package pipeline

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// UnitMode controls how a document is split into text units
type UnitMode string

const (
	UnitLine      UnitMode = "line"      // One unit per line
	UnitParagraph UnitMode = "paragraph" // Units separated by blank lines
	UnitWhole     UnitMode = "whole"     // The whole document is one unit
)

// ParseUnitMode validates a unit mode name
func ParseUnitMode(s string) (UnitMode, error) {
	switch m := UnitMode(strings.ToLower(strings.TrimSpace(s))); m {
	case UnitLine, UnitParagraph, UnitWhole:
		return m, nil
	case "":
		return UnitParagraph, nil
	default:
		return "", fmt.Errorf("unknown unit mode %q (supported: line, paragraph, whole)", s)
	}
}

// Document is plain text read from a file or stdin
type Document struct {
	Source string
	Text   string
}

// maxDocumentBytes caps how much of a single document is read
const maxDocumentBytes = 32 << 20

var stdin io.Reader = os.Stdin

// ReadDocument reads a plain-text document. "-" reads standard input.
func ReadDocument(path string) (*Document, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open document: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("document %s exceeds %d bytes", path, maxDocumentBytes)
	}

	return &Document{Source: path, Text: string(data)}, nil
}

var paragraphBreakRe = regexp.MustCompile(`\r?\n(?:[ \t]*\r?\n)+`)

// SplitUnits splits text into units and the separators between them, so
// that JoinUnits(units, seps) == text.
func SplitUnits(text string, mode UnitMode) (units []string, seps []string) {
	switch mode {
	case UnitLine:
		units = strings.Split(text, "\n")
		seps = make([]string, len(units)-1)
		for i := range seps {
			seps[i] = "\n"
		}
		return units, seps

	case UnitParagraph:
		last := 0
		for _, loc := range paragraphBreakRe.FindAllStringIndex(text, -1) {
			units = append(units, text[last:loc[0]])
			seps = append(seps, text[loc[0]:loc[1]])
			last = loc[1]
		}
		return append(units, text[last:]), seps

	default:
		return []string{text}, nil
	}
}

// JoinUnits reassembles units split by SplitUnits
func JoinUnits(units, seps []string) string {
	var b strings.Builder
	for i, u := range units {
		b.WriteString(u)
		if i < len(seps) {
			b.WriteString(seps[i])
		}
	}
	return b.String()
}
