package readability

import "strings"

func isVowel(r byte) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// SyllableCount estimates syllables with a deterministic vowel-group
// heuristic: count vowel clusters, drop a silent trailing "e" (but not
// "-le"), floor at one. Both Flesch and Gunning Fog consume this count,
// so the same heuristic must feed both.
func SyllableCount(word string) int {
	w := strings.ToLower(word)

	// Reduce to letters so "don't" counts as "dont".
	var b strings.Builder
	b.Grow(len(w))
	for _, r := range w {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	w = b.String()
	if w == "" {
		return 1
	}

	if len(w) > 2 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		w = w[:len(w)-1]
	}

	count := 0
	inGroup := false
	for i := 0; i < len(w); i++ {
		if isVowel(w[i]) {
			if !inGroup {
				count++
				inGroup = true
			}
		} else {
			inGroup = false
		}
	}
	if count == 0 {
		return 1
	}
	return count
}
