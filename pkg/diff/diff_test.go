package diff

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestWordsIdentical(t *testing.T) {
	got := Words("same text", "same text")
	if len(got) != 1 || got[0].Op != Equal || got[0].Text != "same text" {
		t.Errorf("Words(same, same) = %v", got)
	}
}

func TestWordsSubstitution(t *testing.T) {
	got := Words("the dragon roared", "the wyvern roared")
	var deleted, inserted []string
	for _, d := range got {
		switch d.Op {
		case Delete:
			deleted = append(deleted, strings.TrimSpace(d.Text))
		case Insert:
			inserted = append(inserted, strings.TrimSpace(d.Text))
		}
	}
	if len(deleted) != 1 || deleted[0] != "dragon" {
		t.Errorf("deleted = %v, want [dragon]", deleted)
	}
	if len(inserted) != 1 || inserted[0] != "wyvern" {
		t.Errorf("inserted = %v, want [wyvern]", inserted)
	}
}

func TestWordsPreserveBothSides(t *testing.T) {
	a := "He walked slowly to the door."
	b := "He ran to the heavy door."
	deltas := Words(a, b)

	// Every word of a lives in an equal or delete delta, every word of b in
	// an equal or insert delta. Whitespace placement is presentation detail.
	var left, right strings.Builder
	for _, d := range deltas {
		switch d.Op {
		case Equal:
			left.WriteString(d.Text)
			right.WriteString(d.Text)
		case Delete:
			left.WriteString(d.Text)
		case Insert:
			right.WriteString(d.Text)
		}
		left.WriteString(" ")
		right.WriteString(" ")
	}
	if got, want := strings.Fields(left.String()), strings.Fields(a); !equalWords(got, want) {
		t.Errorf("left words = %v, want %v", got, want)
	}
	if got, want := strings.Fields(right.String()), strings.Fields(b); !equalWords(got, want) {
		t.Errorf("right words = %v, want %v", got, want)
	}
}

func equalWords(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestWordsCoalescesRuns(t *testing.T) {
	deltas := Words("one two three", "four five six")
	for i := 1; i < len(deltas); i++ {
		if deltas[i].Op == deltas[i-1].Op {
			t.Errorf("adjacent deltas share op %s: %v", deltas[i].Op, deltas)
		}
	}
}

func TestOpMarshalJSON(t *testing.T) {
	b, err := json.Marshal(WordDelta{Op: Insert, Text: "new"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"op":"insert","text":"new"}` {
		t.Errorf("marshal = %s", b)
	}
}
