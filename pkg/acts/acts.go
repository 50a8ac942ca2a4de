// Package acts splits raw chapter text into heading-delimited sections.
package acts

import (
	"regexp"
	"strings"

	"redline/pkg/schema"
)

// DefaultHeading is the label used when a chapter has no act headings at all,
// or for content that appears before the first heading.
const DefaultHeading = "Chapter Content"

// Heading lines look like "Act I", "Act 2: Noon", "Act IV - The Long Night".
// Matching is anchored at line start; the rest of the line is the title.
var headingRX = regexp.MustCompile(`(?m)^Act[ \t]+(?:[IVXLCDM]+|[ivxlcdm]+|\d+)\b[^\n]*`)

// Segment splits text into ordered acts. It never fails: malformed or absent
// headings degrade to a single act covering the whole (trimmed) text. Ordinals
// are positional and independent of the numerals in the headings.
func Segment(text string) []schema.Act {
	locs := headingRX.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []schema.Act{{
			Number:  1,
			Heading: DefaultHeading,
			Body:    strings.TrimSpace(text),
			Start:   0,
			End:     len(text),
		}}
	}

	out := make([]schema.Act, 0, len(locs)+1)

	// Content before the first heading stays addressable under a generic label.
	if pre := text[:locs[0][0]]; strings.TrimSpace(pre) != "" {
		out = append(out, schema.Act{
			Heading: DefaultHeading,
			Body:    strings.TrimSpace(pre),
			Start:   0,
			End:     locs[0][0],
		})
	}

	for i, loc := range locs {
		heading := strings.TrimRight(text[loc[0]:loc[1]], "\r")
		bodyStart := loc[1]
		if bodyStart < len(text) && text[bodyStart] == '\n' {
			bodyStart++
		}
		start := loc[0]
		// A whitespace-only preamble earns no act of its own, but its bytes
		// still belong to the first span so reassembly stays exact.
		if i == 0 && len(out) == 0 {
			start = 0
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out = append(out, schema.Act{
			Heading: heading,
			Body:    strings.TrimSpace(text[bodyStart:end]),
			Start:   start,
			End:     end,
		})
	}

	for i := range out {
		out[i].Number = i + 1
	}
	return out
}

// Reassemble concatenates the raw act spans back into the source text. Acts
// carry full-span offsets, so this is exact for any output of Segment.
func Reassemble(text string, acts []schema.Act) string {
	var b strings.Builder
	for _, a := range acts {
		b.WriteString(text[a.Start:a.End])
	}
	return b.String()
}
