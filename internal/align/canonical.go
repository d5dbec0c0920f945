package align

import (
	"strings"
	"unicode"
)

// CanonicalTitle reduces a title to its comparison form: lowercased,
// punctuation removed, whitespace collapsed to single spaces. This rule
// is part of the deduplication contract — it directly determines dataset
// membership — so changing it changes which articles count as duplicates.
func CanonicalTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastSpace := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}
