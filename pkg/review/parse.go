package review

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"redline/pkg/schema"
	"redline/pkg/utils"
)

const excerptLimit = 300

// Parse turns raw model output into a ReviewResponse. Models wrap JSON in
// markdown fences and reasoning blocks despite instructions, so those are
// stripped before decoding. A *ParseError carries a truncated excerpt of the
// raw output.
func Parse(raw string) (*schema.ReviewResponse, error) {
	out := utils.CleanJSON(raw)

	if strings.Contains(out, "<think>") {
		if idx := strings.LastIndex(out, "</think>"); idx != -1 {
			out = strings.TrimSpace(out[idx+len("</think>"):])
		}
	}

	if len(out) == 0 {
		return nil, &ParseError{Excerpt: utils.LimitStr(raw, excerptLimit), Err: fmt.Errorf("empty response")}
	}
	if out[0] != '{' {
		if j := strings.Index(out, "{"); j != -1 {
			out = out[j:]
		}
	}
	if len(out) > 0 && out[len(out)-1] != '}' {
		if j := strings.LastIndex(out, "}"); j != -1 {
			out = out[:j+1]
		}
	}

	var resp schema.ReviewResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return nil, &ParseError{Excerpt: utils.LimitStr(raw, excerptLimit), Err: err}
	}
	return &resp, nil
}

// Normalize converts a parsed response into a persistable Review: every
// suggestion gets an id (falling back to s<index+1>) and starts out pending,
// whatever the model claimed.
func Normalize(chapterNum int, persona string, resp *schema.ReviewResponse) *schema.Review {
	rev := &schema.Review{
		ChapterNum:      chapterNum,
		SavedAt:         time.Now().UTC(),
		Score:           resp.Score,
		Status:          "reviewed",
		Persona:         persona,
		Summary:         resp.Summary,
		Acts:            resp.Acts,
		CharacterArcs:   resp.CharacterArcs,
		ContinuityFlags: resp.ContinuityFlags,
		Suggestions:     make([]schema.Suggestion, 0, len(resp.Suggestions)),
	}

	for i, s := range resp.Suggestions {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			id = fmt.Sprintf("s%d", i+1)
		}
		rev.Suggestions = append(rev.Suggestions, schema.Suggestion{
			ID:        id,
			ActNumber: s.ActNumber,
			Type:      s.Type,
			Original:  s.Original,
			Suggested: s.Replacement,
			Reason:    s.Reason,
			Accepted:  schema.AcceptancePending,
		})
	}
	return rev
}
