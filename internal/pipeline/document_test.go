package pipeline

import (
	"strings"
	"testing"
)

func TestSplitUnits_RoundTrip(t *testing.T) {
	texts := []string{
		"",
		"single line",
		"a\nb\nc",
		"para one\nstill one\n\npara two\n \n\npara three\n",
		"\n\nleading blank",
		"crlf one\r\n\r\ncrlf two",
	}
	modes := []UnitMode{UnitLine, UnitParagraph, UnitWhole}

	for _, text := range texts {
		for _, mode := range modes {
			units, seps := SplitUnits(text, mode)
			if len(seps) != len(units)-1 {
				t.Errorf("%s %q: %d units, %d separators", mode, text, len(units), len(seps))
			}
			if got := JoinUnits(units, seps); got != text {
				t.Errorf("%s: JoinUnits(SplitUnits(%q)) = %q", mode, text, got)
			}
		}
	}
}

func TestSplitUnits_Paragraph(t *testing.T) {
	units, _ := SplitUnits("one\ntwo\n\nthree", UnitParagraph)
	if len(units) != 2 || units[0] != "one\ntwo" || units[1] != "three" {
		t.Errorf("unexpected units: %q", units)
	}
}

func TestSplitUnits_Line(t *testing.T) {
	units, _ := SplitUnits("a\nb\n", UnitLine)
	if len(units) != 3 || units[2] != "" {
		t.Errorf("unexpected units: %q", units)
	}
}

func TestParseUnitMode(t *testing.T) {
	tests := []struct {
		in      string
		want    UnitMode
		wantErr bool
	}{
		{"line", UnitLine, false},
		{" Paragraph ", UnitParagraph, false},
		{"WHOLE", UnitWhole, false},
		{"", UnitParagraph, false},
		{"sentence", "", true},
	}
	for _, tt := range tests {
		got, err := ParseUnitMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseUnitMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseUnitMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadDocument_Stdin(t *testing.T) {
	old := stdin
	stdin = strings.NewReader("from stdin")
	defer func() { stdin = old }()

	doc, err := ReadDocument("-")
	if err != nil {
		t.Fatalf("ReadDocument failed: %v", err)
	}
	if doc.Text != "from stdin" || doc.Source != "-" {
		t.Errorf("unexpected document: %+v", doc)
	}
}
