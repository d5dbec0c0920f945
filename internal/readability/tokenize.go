package readability

import (
	"strings"
	"unicode"
)

// abbreviations that end with a period but do not terminate a sentence.
var abbreviations = map[string]struct{}{
	"mr":   {},
	"mrs":  {},
	"ms":   {},
	"dr":   {},
	"st":   {},
	"mt":   {},
	"vs":   {},
	"etc":  {},
	"jr":   {},
	"sr":   {},
	"prof": {},
	"gen":  {},
	"rep":  {},
	"sen":  {},
	"gov":  {},
	"capt": {},
	"col":  {},
	"sgt":  {},
	"lt":   {},
	"e.g":  {},
	"i.e":  {},
	"u.s":  {},
	"u.k":  {},
	"no":   {},
	"vol":  {},
	"fig":  {},
	"jan":  {},
	"feb":  {},
	"mar":  {},
	"apr":  {},
	"jun":  {},
	"jul":  {},
	"aug":  {},
	"sep":  {},
	"sept": {},
	"oct":  {},
	"nov":  {},
	"dec":  {},
}

// Sentences splits text on terminal punctuation, keeping common title and
// reference abbreviations from producing spurious breaks. Empty segments
// are dropped.
func Sentences(text string) []string {
	var (
		sentences []string
		current   strings.Builder
	)

	flush := func() {
		s := strings.TrimSpace(current.String())
		current.Reset()
		if s != "" {
			sentences = append(sentences, s)
		}
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Swallow a run of terminal punctuation ("?!", "...").
		for i+1 < len(runes) && isTerminal(runes[i+1]) {
			i++
			current.WriteRune(runes[i])
		}
		if r == '.' && isAbbreviation(current.String()) {
			continue
		}
		flush()
	}
	flush()
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// isAbbreviation checks whether the text ends in a known abbreviation
// followed by its period.
func isAbbreviation(segment string) bool {
	trimmed := strings.TrimRight(segment, ".")
	if trimmed == "" {
		return false
	}
	idx := strings.LastIndexFunc(trimmed, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	last := strings.ToLower(trimmed[idx+1:])
	last = strings.TrimLeft(last, "(\"'")
	// Single letters are initials ("J. D. Salinger") or the leading parts
	// of dotted abbreviations ("e.g.", "U.S.").
	if len(last) == 1 && last[0] >= 'a' && last[0] <= 'z' {
		return true
	}
	_, ok := abbreviations[last]
	return ok
}

// Words splits on whitespace and strips edge punctuation, retaining
// internal hyphens and apostrophes ("mother-in-law", "don't").
func Words(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
