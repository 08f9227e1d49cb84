package probe

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxIdentLen is PostgreSQL's identifier limit.
const maxIdentLen = 63

// NormalizeFieldName turns header text into a lowercase ASCII identifier:
// accents are stripped (NFD, drop Mn, NFC), space, dash and dot become a
// single underscore, other characters are dropped, and the result is
// truncated to maxIdentLen. An empty result becomes "col".
func NormalizeFieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return truncateFieldName(name)
}

// truncateFieldName keeps the first 10 and last 53 bytes of an over-long
// name, so both the prefix and the distinguishing suffix survive.
func truncateFieldName(s string) string {
	if len(s) > maxIdentLen {
		return s[:10] + s[len(s)-53:]
	}
	return s
}
