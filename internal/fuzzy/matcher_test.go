package fuzzy

import (
	"errors"
	"strings"
	"testing"
)

func TestBuild_SeparatorTolerance(t *testing.T) {
	m, err := Build("JohnSmith", 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, input := range []string{"John Smith", "John-Smith", "JOHN SMITH", "john\n smith", "JohnSmith"} {
		got, n := m.ReplaceAll("Hi "+input+"!", "PERSON_1")
		if got != "Hi PERSON_1!" || n != 1 {
			t.Errorf("ReplaceAll(%q) = %q (%d), want %q", input, got, n, "Hi PERSON_1!")
		}
	}
}

func TestBuild_ReplacesAllOccurrences(t *testing.T) {
	m, err := Build("555-1234", 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got, n := m.ReplaceAll("call 555-1234 or 555 1234.", "PHONE_1")
	if got != "call PHONE_1 or PHONE_1." {
		t.Errorf("unexpected output: %q", got)
	}
	if n != 2 {
		t.Errorf("expected 2 replacements, got %d", n)
	}
}

func TestBuild_KeepsSurroundingPunctuation(t *testing.T) {
	m, err := Build("123MainSt", 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got, _ := m.ReplaceAll("lives at 123 Main St. Contact", "LOCATION_1")
	if got != "lives at LOCATION_1. Contact" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestBuild_Metacharacters(t *testing.T) {
	m, err := Build("a.b", 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if m.MatchString("axb") {
		t.Error("stripped dot must not act as a wildcard")
	}
	if !m.MatchString("a b") {
		t.Error("expected separator tolerance between a and b")
	}
}

func TestBuild_Degenerate(t *testing.T) {
	for _, in := range []string{"", "---", ".,'"} {
		m, err := Build(in, 0)
		if !errors.Is(err, ErrDegenerate) {
			t.Errorf("Build(%q) error = %v, want ErrDegenerate", in, err)
		}
		if m != nil {
			t.Errorf("Build(%q) returned a matcher for degenerate input", in)
		}
	}
}

func TestBuild_TooLong(t *testing.T) {
	_, err := Build(strings.Repeat("a", 11), 10)
	if !errors.Is(err, ErrTooLong) {
		t.Errorf("expected ErrTooLong, got %v", err)
	}

	if _, err := Build(strings.Repeat("a", 10), 10); err != nil {
		t.Errorf("span at the cap should build, got %v", err)
	}

	// punctuation does not count toward the cap
	if _, err := Build("a-b-c-d-e", 5); err != nil {
		t.Errorf("expected stripped length to be measured, got %v", err)
	}
}

func TestBuild_Unicode(t *testing.T) {
	m, err := Build("JoséMüller", 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got, n := m.ReplaceAll("Herr José Müller sagt", "PERSON_1")
	if got != "Herr PERSON_1 sagt" || n != 1 {
		t.Errorf("unexpected output: %q (%d)", got, n)
	}
}

func TestBuild_NonDecimalNumbers(t *testing.T) {
	if got := Strip("Louis Ⅻ, ½"); got != "LouisⅫ½" {
		t.Errorf("Strip() = %q, want numeric runes kept", got)
	}

	m, err := Build("LouisⅫ", 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got, n := m.ReplaceAll("King Louis Ⅻ ruled.", "PERSON_1")
	if got != "King PERSON_1 ruled." || n != 1 {
		t.Errorf("unexpected output: %q (%d)", got, n)
	}
}

func TestReplaceAll_LiteralReplacement(t *testing.T) {
	m, _ := Build("Ann", 0)
	got, _ := m.ReplaceAll("Ann", "$1_X")
	if got != "$1_X" {
		t.Errorf("replacement must be literal, got %q", got)
	}
}

func TestStrip(t *testing.T) {
	if got := Strip("O'Brien, Jr."); got != "OBrienJr" {
		t.Errorf("Strip() = %q", got)
	}
}
