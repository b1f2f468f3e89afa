package textnorm

import (
	"regexp"
	"strings"
)

var (
	spaceRe  = regexp.MustCompile(`\s+`)
	symbolRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// Normalize collapses whitespace runs and strips punctuation and symbols,
// keeping letters of any script (Hangul included), digits and underscores.
// Empty input yields an empty string.
func Normalize(text string) string {
	text = spaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	text = symbolRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}
