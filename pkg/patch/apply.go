// Package patch reconciles accepted suggestions against live chapter text.
//
// Application is sequential and stateful: each replacement changes the text
// later suggestions are matched against, so order is the review order and
// nothing runs concurrently. Text outside matched spans is never altered.
package patch

import (
	"strings"

	"redline/pkg/schema"
)

// Result reports the outcome of one reconciliation pass. Partial and total
// match failure are reported here, never returned as errors; the caller
// decides whether zero applied edits is a failure.
type Result struct {
	NewText  string   `json:"-"`
	Applied  int      `json:"applied"`
	Skipped  int      `json:"skipped"`
	NotFound []string `json:"notFound"`
}

// ApplyAccepted applies every accepted suggestion to text, in order. For each
// suggestion the first verbatim occurrence of its original span is replaced;
// when the exact text has drifted (line wraps, doubled spaces) a
// whitespace-tolerant fallback match is tried before giving up. Only the
// first occurrence is ever replaced, so short recurring snippets cannot cause
// multi-site edits.
func ApplyAccepted(text string, suggestions []schema.Suggestion) Result {
	res := Result{NewText: text, NotFound: []string{}}

	for _, s := range suggestions {
		if s.Accepted != schema.AcceptanceAccepted {
			continue
		}
		// A suggestion without both sides is inapplicable, never an error.
		if strings.TrimSpace(s.Original) == "" || strings.TrimSpace(s.Suggested) == "" {
			res.Skipped++
			continue
		}

		if idx := strings.Index(res.NewText, s.Original); idx >= 0 {
			res.NewText = splice(res.NewText, idx, idx+len(s.Original), s.Suggested)
			res.Applied++
			continue
		}

		if start, end, ok := fuzzyLocate(res.NewText, s.Original); ok {
			res.NewText = splice(res.NewText, start, end, s.Suggested)
			res.Applied++
			continue
		}

		res.Skipped++
		res.NotFound = append(res.NotFound, s.ID)
	}

	return res
}

// fuzzyLocate finds the first whitespace-tolerant occurrence of original in
// text. Feasibility is checked against a whitespace-collapsed view first so
// the compiled pattern only runs when a match is actually present.
func fuzzyLocate(text, original string) (start, end int, ok bool) {
	norm := NormalizeWhitespace(original)
	if norm == "" {
		return 0, 0, false
	}
	if !strings.Contains(CollapseWhitespace(text), norm) {
		return 0, 0, false
	}
	re, err := WhitespaceTolerant(original)
	if err != nil {
		return 0, 0, false
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

// splice replaces text[start:end] with replacement by index. Replacement text
// is inserted literally; regexp replacement templates would expand $ refs.
func splice(text string, start, end int, replacement string) string {
	return text[:start] + replacement + text[end:]
}
