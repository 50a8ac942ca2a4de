package patch

import (
	"errors"
	"regexp"
	"strings"
)

var wsRX = regexp.MustCompile(`\s+`)

// NormalizeWhitespace collapses every run of whitespace to a single space and
// trims the ends. Two snippets that differ only in line wraps or double
// spaces normalize to the same string.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CollapseWhitespace collapses whitespace runs without trimming, producing a
// view of the text that NormalizeWhitespace output can be searched in.
func CollapseWhitespace(s string) string {
	return wsRX.ReplaceAllString(s, " ")
}

// WhitespaceTolerant compiles a pattern that matches literal exactly except
// that any whitespace run in literal matches any whitespace run in the text.
// All regexp metacharacters in literal are neutralized first.
func WhitespaceTolerant(literal string) (*regexp.Regexp, error) {
	words := strings.Fields(literal)
	if len(words) == 0 {
		return nil, errors.New("empty match pattern")
	}
	escaped := make([]string, len(words))
	for i, w := range words {
		escaped[i] = regexp.QuoteMeta(w)
	}
	return regexp.Compile(strings.Join(escaped, `\s+`))
}
