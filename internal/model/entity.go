package model

import "strings"

// EntityType is a normalized entity category (e.g. PERSON, LOCATION, EMAIL)
type EntityType string

// Outside is the reserved sentinel for tokens that belong to no entity
const Outside EntityType = "O"

// NormalizeType trims and upper-cases a raw category name.
// An empty or "O" category normalizes to Outside.
func NormalizeType(raw string) EntityType {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" || t == string(Outside) {
		return Outside
	}
	return EntityType(t)
}

// IsOutside reports whether t is the non-entity sentinel
func (t EntityType) IsOutside() bool {
	return t == Outside || t == ""
}

// TokenPrediction is one classified text fragment as produced by a classifier
type TokenPrediction struct {
	Text  string  `json:"text"`  // Fragment text, may carry leading whitespace
	Label string  `json:"label"` // BIO label, e.g. "B-PER", "I-PER", "O"
	Score float64 `json:"score"` // Classifier confidence in [0,1]
}

// MergedEntitySpan is a whole entity reconstructed from adjacent same-type tokens.
// Text is the concatenation of normalized fragments (no whitespace, no separators
// outside the retained punctuation set).
type MergedEntitySpan struct {
	Type  EntityType `json:"type"`
	Text  string     `json:"text"`
	Score float64    `json:"score"` // Mean token score; informational only
}

// TagKind is the position of a token relative to an entity span
type TagKind int

const (
	TagOutside TagKind = iota // Not part of any entity
	TagBegin                  // First token of an entity
	TagInside                 // Continuation token (also used for bare labels)
)

// String returns the BIO letter for the kind
func (k TagKind) String() string {
	switch k {
	case TagBegin:
		return "B"
	case TagInside:
		return "I"
	default:
		return "O"
	}
}

// Tag is a parsed label: Begin(type), Inside(type) or Outside
type Tag struct {
	Kind TagKind
	Type EntityType
}

// ParseLabel parses a classifier label once into a Tag.
//
//	"O", ""          -> Outside
//	"B-PER", "B_PER" -> Begin(PER)
//	"I-PER", "I_PER" -> Inside(PER)
//	"PER"            -> Inside(PER)
func ParseLabel(label string) Tag {
	l := strings.TrimSpace(label)
	if len(l) > 2 && (l[1] == '-' || l[1] == '_') {
		switch l[0] {
		case 'B', 'b':
			return typedTag(TagBegin, l[2:])
		case 'I', 'i':
			return typedTag(TagInside, l[2:])
		}
	}
	return typedTag(TagInside, l)
}

func typedTag(kind TagKind, raw string) Tag {
	t := NormalizeType(raw)
	if t.IsOutside() {
		return Tag{Kind: TagOutside, Type: Outside}
	}
	return Tag{Kind: kind, Type: t}
}
