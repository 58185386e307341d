package registry

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/pseudonym/internal/model"
)

func TestResolve_CounterMonotonicity(t *testing.T) {
	r := New()

	for i, name := range []string{"Alice", "Bob", "Carol"} {
		got, ok := r.Resolve("PERSON", name)
		if !ok {
			t.Fatalf("expected pseudonym for %s", name)
		}
		want := fmt.Sprintf("PERSON_%d", i+1)
		if got != want {
			t.Errorf("Resolve(%s) = %s, want %s", name, got, want)
		}
	}

	loc, _ := r.Resolve("LOCATION", "Paris")
	if loc != "LOCATION_1" {
		t.Errorf("expected per-type counter to start at 1, got %s", loc)
	}
}

func TestResolve_Stable(t *testing.T) {
	r := New()
	first, _ := r.Resolve("PERSON", "JohnSmith")
	_, _ = r.Resolve("PERSON", "JaneDoe")
	again, _ := r.Resolve("PERSON", "JohnSmith")

	if first != again {
		t.Errorf("expected stable pseudonym, got %s then %s", first, again)
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", r.Len())
	}

	next, _ := r.Resolve("PERSON", "Zed")
	if next != "PERSON_3" {
		t.Errorf("repeat lookup must not advance counter, got %s", next)
	}
}

func TestResolve_EmptyTextNotRegistered(t *testing.T) {
	r := New()
	if p, ok := r.Resolve("PERSON", ""); ok || p != "" {
		t.Errorf("expected no pseudonym for empty text, got %q", p)
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", r.Len())
	}
	if p, _ := r.Resolve("PERSON", "Ann"); p != "PERSON_1" {
		t.Errorf("empty text must not consume a counter, got %s", p)
	}
}

func TestResolve_PunctuationOnlyNotRegistered(t *testing.T) {
	r := New()
	for _, text := range []string{"-", ".,'", " "} {
		if p, ok := r.Resolve("PERSON", text); ok || p != "" {
			t.Errorf("Resolve(%q) = %q, want no pseudonym", text, p)
		}
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", r.Len())
	}
	if p, _ := r.Resolve("PERSON", "Ann"); p != "PERSON_1" {
		t.Errorf("degenerate text must not consume a counter, got %s", p)
	}
}

func TestResolve_TextKeyedAcrossTypes(t *testing.T) {
	r := New()
	first, _ := r.Resolve("ORG", "Jordan")
	second, _ := r.Resolve("PERSON", "Jordan")

	if second != first {
		t.Errorf("expected earlier pseudonym %s to be reused, got %s", first, second)
	}
	if p, _ := r.Resolve("PERSON", "Ann"); p != "PERSON_1" {
		t.Errorf("reuse under another type must not advance PERSON counter, got %s", p)
	}
}

func TestReset(t *testing.T) {
	r := New()
	_, _ = r.Resolve("PERSON", "Ann")
	_, _ = r.Resolve("PERSON", "Bob")
	r.Reset()

	if r.Len() != 0 {
		t.Errorf("expected empty registry after reset, got %d", r.Len())
	}
	if _, ok := r.Lookup("Ann"); ok {
		t.Error("expected Ann to be forgotten after reset")
	}
	if p, _ := r.Resolve("PERSON", "Bob"); p != "PERSON_1" {
		t.Errorf("expected counters to restart, got %s", p)
	}
}

func TestResolve_ConcurrentSameText(t *testing.T) {
	r := New()
	const n = 50

	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = r.Resolve("PERSON", "SameName")
		}(i)
	}
	wg.Wait()

	for i, p := range results {
		if p != "PERSON_1" {
			t.Fatalf("goroutine %d got %s, want PERSON_1", i, p)
		}
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", r.Len())
	}
}

func TestEntries_Ordered(t *testing.T) {
	r := New()
	for _, name := range []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8", "P9", "P10"} {
		_, _ = r.Resolve("PERSON", name)
	}
	_, _ = r.Resolve("EMAIL", "a@b.io")

	entries := r.Entries()
	if len(entries) != 11 {
		t.Fatalf("expected 11 entries, got %d", len(entries))
	}
	if entries[0].Type != "EMAIL" {
		t.Errorf("expected EMAIL first, got %s", entries[0].Type)
	}
	if entries[10].Pseudonym != "PERSON_10" || entries[10].Original != "P10" {
		t.Errorf("expected PERSON_10 last, got %+v", entries[10])
	}
	if entries[1].Pseudonym != "PERSON_1" {
		t.Errorf("expected numeric ordering, got %s", entries[1].Pseudonym)
	}
}

func TestWriteYAML(t *testing.T) {
	r := New()
	_, _ = r.Resolve(model.EntityType("PERSON"), "JohnSmith")

	var buf bytes.Buffer
	if err := r.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"type: PERSON", "pseudonym: PERSON_1", "original: JohnSmith"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in YAML output:\n%s", want, out)
		}
	}
}
