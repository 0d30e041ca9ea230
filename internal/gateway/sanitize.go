// ABOUTME: Free-text sanitization for values destined for storage
// ABOUTME: Strips markup and non-printable characters, truncates to a hard ceiling
package gateway

import (
	"regexp"
	"strings"
	"unicode"
)

var markupPattern = regexp.MustCompile(`<[^>]*>`)

// sanitizeText prepares caller-supplied free text for storage: markup is
// stripped, non-printable runes (except newline and tab) are removed, and the
// result is truncated to maxRunes.
func sanitizeText(s string, maxRunes int) string {
	s = markupPattern.ReplaceAllString(s, "")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}
	s = strings.TrimSpace(b.String())

	runes := []rune(s)
	if len(runes) > maxRunes {
		s = string(runes[:maxRunes])
	}
	return s
}
