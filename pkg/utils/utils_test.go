package utils

import (
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"same", "same", 0},
		{"héllo", "hello", 1},
	}
	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("same", "same"); got != 1.0 {
		t.Errorf("identical similarity = %v, want 1", got)
	}
	if got := Similarity("SAME ", "same"); got != 1.0 {
		t.Errorf("case and space insensitive similarity = %v, want 1", got)
	}
	if got := Similarity("abc", "xyz"); got != 0 {
		t.Errorf("disjoint similarity = %v, want 0", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	s, omitted := TruncateRunes("hello", 10)
	if s != "hello" || omitted != 0 {
		t.Errorf("under limit: (%q, %d)", s, omitted)
	}
	s, omitted = TruncateRunes("hello world", 5)
	if s != "hello" || omitted != 6 {
		t.Errorf("over limit: (%q, %d)", s, omitted)
	}
	// Limit counts runes, not bytes.
	s, omitted = TruncateRunes("héllo", 2)
	if s != "hé" || omitted != 3 {
		t.Errorf("multibyte: (%q, %d)", s, omitted)
	}
	s, omitted = TruncateRunes("anything", 0)
	if s != "anything" || omitted != 0 {
		t.Errorf("zero limit: (%q, %d)", s, omitted)
	}
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := CleanJSON(tt.in); got != tt.want {
			t.Errorf("CleanJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("one  two\nthree"); got != 3 {
		t.Errorf("WordCount = %d, want 3", got)
	}
	if got := WordCount("   "); got != 0 {
		t.Errorf("WordCount(blank) = %d, want 0", got)
	}
}
