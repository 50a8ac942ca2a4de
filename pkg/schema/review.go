package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Acceptance is the curator's decision on a suggestion. It marshals to the
// stored null/true/false form so existing review files stay readable.
type Acceptance int

const (
	AcceptancePending Acceptance = iota
	AcceptanceAccepted
	AcceptanceRejected
)

func (a Acceptance) String() string {
	switch a {
	case AcceptanceAccepted:
		return "accepted"
	case AcceptanceRejected:
		return "rejected"
	default:
		return "pending"
	}
}

func (a Acceptance) MarshalJSON() ([]byte, error) {
	switch a {
	case AcceptanceAccepted:
		return []byte("true"), nil
	case AcceptanceRejected:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (a *Acceptance) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "null", `""`, `"pending"`:
		*a = AcceptancePending
	case "true", `"accepted"`:
		*a = AcceptanceAccepted
	case "false", `"rejected"`:
		*a = AcceptanceRejected
	default:
		return fmt.Errorf("invalid acceptance value: %s", data)
	}
	return nil
}

// Score is a 1.0-10.0 rating. Models return it as a number or a quoted string
// depending on provider mood, so it parses from either.
type Score float64

func (s Score) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(s), 'g', -1, 64)), nil
}

func (s *Score) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*s = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid score %q: %w", raw, err)
	}
	*s = Score(f)
	return nil
}

// Suggestion is one proposed, localized text substitution.
type Suggestion struct {
	ID        string     `json:"id"`
	ActNumber int        `json:"actNumber,omitempty"`
	Type      string     `json:"type,omitempty"`
	Original  string     `json:"original"`
	Suggested string     `json:"suggested"`
	Reason    string     `json:"reason,omitempty"`
	Accepted  Acceptance `json:"accepted"`
}

// UnmarshalJSON accepts "replacement" as an alias for "suggested"; models and
// older review files use the two interchangeably.
func (s *Suggestion) UnmarshalJSON(data []byte) error {
	type plain Suggestion
	aux := struct {
		*plain
		Replacement string `json:"replacement"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if s.Suggested == "" {
		s.Suggested = aux.Replacement
	}
	return nil
}

// ActNote is the per-act portion of a review.
type ActNote struct {
	ActNumber int    `json:"actNumber"`
	Heading   string `json:"heading,omitempty"`
	Comment   string `json:"comment"`
}

// ArcNote tracks one character's arc across the chapter.
type ArcNote struct {
	Character string `json:"character"`
	Note      string `json:"note"`
}

// Review is one LLM evaluation of one chapter at one point in time. Immutable
// once saved except for the acceptance state of its suggestions.
type Review struct {
	ChapterNum      int          `json:"chapterNum"`
	SavedAt         time.Time    `json:"savedAt"`
	Score           Score        `json:"score"`
	Status          string       `json:"status"`
	Persona         string       `json:"persona,omitempty"`
	Summary         string       `json:"summary"`
	Acts            []ActNote    `json:"acts,omitempty"`
	CharacterArcs   []ArcNote    `json:"characterArcs,omitempty"`
	ContinuityFlags []string     `json:"continuityFlags,omitempty"`
	Suggestions     []Suggestion `json:"suggestions"`
}

// FindSuggestion returns the suggestion with the given id, or nil.
func (r *Review) FindSuggestion(id string) *Suggestion {
	for i := range r.Suggestions {
		if r.Suggestions[i].ID == id {
			return &r.Suggestions[i]
		}
	}
	return nil
}

// AcceptedSuggestions returns only the suggestions a curator accepted, in
// review order.
func (r *Review) AcceptedSuggestions() []Suggestion {
	out := make([]Suggestion, 0, len(r.Suggestions))
	for _, s := range r.Suggestions {
		if s.Accepted == AcceptanceAccepted {
			out = append(out, s)
		}
	}
	return out
}

// Act is a heading-delimited structural subdivision of a chapter's text,
// derived on every read. Start and End are byte offsets of the full act span
// (heading line included) so the original text can be reassembled.
type Act struct {
	Number  int    `json:"number"`
	Heading string `json:"heading"`
	Body    string `json:"body"`
	Start   int    `json:"-"`
	End     int    `json:"-"`
}
