package review

import (
	"fmt"
	"strings"

	"redline/pkg/utils"
)

// MaxReviewRunes bounds how much chapter text goes into one prompt. Upstream
// context windows are finite and cost scales with input size; anything beyond
// the budget is cut and replaced with a visible marker.
const MaxReviewRunes = 48000

// Persona is a named editorial rubric. Swapping personas changes the
// evaluation instructions, never the response schema.
type Persona struct {
	Name   string
	Title  string
	Rubric string
}

var personas = map[string]Persona{
	"developmental": {
		Name:  "developmental",
		Title: "a senior developmental editor",
		Rubric: `Evaluate structure and substance:
- Does each act earn its place, and does the chapter advance at least one plot thread?
- Are character motivations consistent with what the text establishes?
- Flag pacing problems: scenes that drag, reveals that land too early or too late.
- Suggestions should target the smallest span of text that fixes the problem.`,
	},
	"line": {
		Name:  "line",
		Title: "a meticulous line editor",
		Rubric: `Evaluate the prose itself:
- Tighten wordy or repetitive sentences; cut filter words and stock phrases.
- Flag tense slips, point-of-view breaks, and dialogue tags that fight the dialogue.
- Preserve the author's voice; suggest the minimal rewording, not a rewrite.
- Quote the exact text being changed, including its punctuation.`,
	},
	"beta": {
		Name:  "beta",
		Title: "an attentive beta reader",
		Rubric: `React as a dedicated reader of the series:
- Where did your attention wander, and where were you hooked?
- Call out moments that feel out of character or unearned.
- Note continuity details that contradict earlier chapters.
- Keep suggestions sparing; only propose an edit where a passage genuinely lost you.`,
	},
}

// PersonaFor resolves a persona by name, falling back to the developmental
// editor for unknown or empty names.
func PersonaFor(name string) Persona {
	if p, ok := personas[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return personas["developmental"]
}

// Personas lists the available persona names.
func Personas() []string {
	return []string{"developmental", "line", "beta"}
}

const promptTemplate = `You are %s reviewing one chapter of an ongoing multi-book novel series. Chapters are divided into acts by heading lines such as "Act I: Dawn".

%s

Respond with ONLY a single JSON object, no markdown, no commentary, matching exactly:
{
  "score": 1.0-10.0,
  "summary": "two to four sentence overall assessment",
  "acts": [{"actNumber": 1, "heading": "Act I: ...", "comment": "..."}],
  "suggestions": [{"id": "s1", "actNumber": 1, "type": "rewrite|insert|delete|rephrase", "original": "exact text from the chapter", "replacement": "proposed text", "reason": "..."}],
  "character_arcs": [{"character": "...", "note": "..."}],
  "continuity_flags": ["..."]
}

Rules for suggestions:
- "original" must quote the chapter verbatim, 500 characters at most, and must be long enough to be unambiguous.
- "replacement" must be complete drop-in text, never a description of a change.
- Propose at most 12 suggestions, most important first.
- If the chapter text ends with a truncation marker, do not comment on the cut-off.`

// BuildSystemPrompt fills the shared template with the persona's rubric.
func BuildSystemPrompt(p Persona) string {
	return fmt.Sprintf(promptTemplate, p.Title, p.Rubric)
}

// BuildUserPrompt assembles the chapter payload, truncating to the rune
// budget and reporting how many runes were cut.
func BuildUserPrompt(chapterNum int, title, text string) (string, int) {
	body, omitted := utils.TruncateRunes(text, MaxReviewRunes)
	if omitted > 0 {
		body += fmt.Sprintf("\n\n[TEXT TRUNCATED FOR REVIEW — %d characters omitted]", omitted)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Chapter %d", chapterNum)
	if title != "" {
		fmt.Fprintf(&b, ": %s", title)
	}
	b.WriteString("\n\n--- BEGIN CHAPTER ---\n")
	b.WriteString(body)
	b.WriteString("\n--- END CHAPTER ---\n")
	return b.String(), omitted
}
