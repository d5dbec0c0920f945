package readability

import (
	_ "embed"
	"strings"
)

//go:embed dalechall_words.txt
var familiarWordData string

// DaleChallScorer decides word familiarity for the Dale-Chall formula.
// The engine picks one implementation at construction; the formula code
// never inspects which one it got.
type DaleChallScorer interface {
	// Familiar reports whether the word appears on the familiar list.
	// Matching is case-insensitive and tolerant of regular inflections.
	Familiar(word string) bool
}

// ListScorer checks words against the embedded familiar-word list,
// falling back to stripping common inflectional suffixes so "walked"
// matches "walk" and "dogs" matches "dog".
type ListScorer struct {
	words map[string]struct{}
}

// NewListScorer builds the default scorer from the embedded list.
func NewListScorer() *ListScorer {
	lines := strings.Split(familiarWordData, "\n")
	words := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		w := strings.TrimSpace(line)
		if w != "" {
			words[w] = struct{}{}
		}
	}
	return &ListScorer{words: words}
}

func (s *ListScorer) Familiar(word string) bool {
	w := strings.ToLower(word)
	w = strings.Trim(w, "'")
	if w == "" {
		return true
	}
	if _, ok := s.words[w]; ok {
		return true
	}
	for _, stem := range inflectionStems(w) {
		if _, ok := s.words[stem]; ok {
			return true
		}
	}
	return false
}

// inflectionStems yields candidate base forms for a regularly inflected
// word. Crude stemming is enough here: false positives make a word
// "familiar", which errs toward lower difficulty, matching how the
// published list treats regular inflections of listed words.
func inflectionStems(w string) []string {
	var stems []string
	add := func(suffix string, minStem int) {
		if strings.HasSuffix(w, suffix) && len(w)-len(suffix) >= minStem {
			stems = append(stems, w[:len(w)-len(suffix)])
		}
	}
	add("'s", 2)
	add("ies", 2) // cries -> cri, then +y below
	add("es", 2)
	add("s", 2)
	add("ed", 2)
	add("ing", 3)
	add("ly", 3)
	if strings.HasSuffix(w, "ies") && len(w) > 4 {
		stems = append(stems, w[:len(w)-3]+"y")
	}
	// Doubled final consonant: "stopped" -> "stopp" -> "stop".
	for _, s := range append([]string(nil), stems...) {
		if n := len(s); n >= 3 && s[n-1] == s[n-2] && !isVowel(s[n-1]) {
			stems = append(stems, s[:n-1])
		}
		// Dropped silent e: "hoping" -> "hop" misses "hope".
		stems = append(stems, s+"e")
	}
	return stems
}
