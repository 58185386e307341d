// Package registry assigns stable, type-scoped pseudonyms to entity text.
//
// A Registry is owned by the caller. Every text unit of one document must be
// anonymized against the same Registry so that repeated mentions of an entity
// receive the same pseudonym; independent documents should use separate
// registries.
package registry

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"unicode"

	"github.com/ppiankov/pseudonym/internal/model"
	"gopkg.in/yaml.v3"
)

// Registry maps merged entity text to a pseudonym such as PERSON_1.
// Entries are never removed or overwritten (except by Reset).
// All methods are safe for concurrent use; Resolve is serialized so that two
// callers can never assign different pseudonyms to the same text.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]assignment
	counters map[model.EntityType]int
}

type assignment struct {
	pseudonym string
	typ       model.EntityType
	n         int
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		entries:  make(map[string]assignment),
		counters: make(map[model.EntityType]int),
	}
}

// Resolve returns the pseudonym for text, assigning the next one for typ on
// first sight. It returns false for text without letters or numbers, which is
// never registered.
//
// Lookup is keyed by text alone: if the same text was first registered under
// another type, that earlier pseudonym is returned unchanged.
func (r *Registry) Resolve(typ model.EntityType, text string) (string, bool) {
	if !hasAlnum(text) {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.entries[text]; ok {
		return a.pseudonym, true
	}

	n := r.counters[typ]
	if n == 0 {
		n = 1
	}
	a := assignment{pseudonym: fmt.Sprintf("%s_%d", typ, n), typ: typ, n: n}
	r.entries[text] = a
	r.counters[typ] = n + 1
	return a.pseudonym, true
}

// Lookup returns the pseudonym already assigned to text, if any
func (r *Registry) Lookup(text string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.entries[text]
	return a.pseudonym, ok
}

// Len returns the number of registered entity texts
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Reset clears all mappings and counters
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]assignment)
	r.counters = make(map[model.EntityType]int)
}

// Entries returns a snapshot of all mappings ordered by type, then by
// assignment order within the type.
func (r *Registry) Entries() []model.PseudonymEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	texts := make([]string, 0, len(r.entries))
	for text := range r.entries {
		texts = append(texts, text)
	}
	sort.Slice(texts, func(i, j int) bool {
		a, b := r.entries[texts[i]], r.entries[texts[j]]
		if a.typ != b.typ {
			return a.typ < b.typ
		}
		return a.n < b.n
	})

	out := make([]model.PseudonymEntry, len(texts))
	for i, text := range texts {
		a := r.entries[text]
		out[i] = model.PseudonymEntry{Type: a.typ, Pseudonym: a.pseudonym, Original: text}
	}
	return out
}

// WriteYAML writes the mapping table to w for later re-identification
func (r *Registry) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.Entries()); err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	return enc.Close()
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
