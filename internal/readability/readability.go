// Package readability computes the Flesch Reading Ease, Gunning Fog, and
// Dale-Chall scores over plain article text. All three formulas share one
// tokenizer and one syllable heuristic, so their inputs agree.
package readability

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrEmptyText is returned when a text yields no sentences or words.
var ErrEmptyText = errors.New("text has no scorable sentences")

// Record holds the computed metrics for a single article.
type Record struct {
	ArticleID string `json:"article_id"`
	URL       string `json:"url"`
	Source    string `json:"source"`
	IssueYear *int   `json:"issue_year,omitempty"`
	IssueDate string `json:"issue_date,omitempty"`
	// PublishedYear is the year of the publication date, kept so articles
	// outside every issue window still land in a yearly aggregate.
	PublishedYear int `json:"published_year,omitempty"`

	Flesch     float64 `json:"flesch"`
	GunningFog float64 `json:"gunning_fog"`
	DaleChall  float64 `json:"dale_chall"`

	WordCount     int `json:"word_count"`
	SentenceCount int `json:"sentence_count"`
	SyllableCount int `json:"syllable_count"`
	ComplexWords  int `json:"complex_words"`
	DifficultWord int `json:"difficult_words"`
}

// Engine scores texts. The Dale-Chall familiarity source is fixed at
// construction so the formula path has no conditional branches.
type Engine struct {
	scorer DaleChallScorer
}

// NewEngine builds an engine with the given scorer, defaulting to the
// embedded familiar-word list.
func NewEngine(scorer DaleChallScorer) *Engine {
	if scorer == nil {
		scorer = NewListScorer()
	}
	return &Engine{scorer: scorer}
}

// Compute scores a single text. Sentence, word, and syllable counts come
// from the shared tokenizer; a text with no sentences or no words is an
// error rather than a zero score.
func (e *Engine) Compute(text string) (Record, error) {
	sentences := Sentences(text)
	if len(sentences) == 0 {
		return Record{}, ErrEmptyText
	}

	var (
		words     []string
		initial   []bool // sentence-initial flag, parallel to words
		syllables int
	)
	for _, s := range sentences {
		sw := Words(s)
		for i, w := range sw {
			words = append(words, w)
			initial = append(initial, i == 0)
			syllables += SyllableCount(w)
		}
	}
	if len(words) == 0 {
		return Record{}, ErrEmptyText
	}

	var (
		complexWords   int
		difficultWords int
	)
	for i, w := range words {
		if isComplexWord(w, initial[i]) {
			complexWords++
		}
		if !e.scorer.Familiar(w) {
			difficultWords++
		}
	}

	wc := float64(len(words))
	sc := float64(len(sentences))
	wordsPerSentence := wc / sc

	flesch := 206.835 - 1.015*wordsPerSentence - 84.6*(float64(syllables)/wc)
	fog := 0.4 * (wordsPerSentence + 100*float64(complexWords)/wc)

	pdw := 100 * float64(difficultWords) / wc
	daleChall := 0.1579*pdw + 0.0496*wordsPerSentence
	if pdw > 5 {
		daleChall += 3.6365
	}

	return Record{
		Flesch:        flesch,
		GunningFog:    fog,
		DaleChall:     daleChall,
		WordCount:     len(words),
		SentenceCount: len(sentences),
		SyllableCount: syllables,
		ComplexWords:  complexWords,
		DifficultWord: difficultWords,
	}, nil
}

// isComplexWord implements the Gunning Fog complex-word rule: three or
// more syllables, excluding proper nouns (capitalized words not at a
// sentence start), words that reach three syllables only through an
// -es/-ed/-ing inflection, and hyphenated compounds of simpler parts.
func isComplexWord(word string, sentenceInitial bool) bool {
	if strings.Contains(word, "-") {
		for _, part := range strings.Split(word, "-") {
			if part != "" && isComplexWord(part, sentenceInitial) {
				return true
			}
		}
		return false
	}
	if SyllableCount(word) < 3 {
		return false
	}
	if !sentenceInitial && isCapitalized(word) {
		return false
	}
	for _, suffix := range []string{"es", "ed", "ing"} {
		stem := strings.TrimSuffix(word, suffix)
		if stem != word && stem != "" && SyllableCount(stem) < 3 {
			return false
		}
	}
	return true
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

// Score computes metrics and stamps the article identity fields, used by
// the pipeline when walking a corpus.
func (e *Engine) Score(id, url, source string, issueYear *int, text string) (Record, error) {
	rec, err := e.Compute(text)
	if err != nil {
		return Record{}, fmt.Errorf("article %s: %w", id, err)
	}
	rec.ArticleID = id
	rec.URL = url
	rec.Source = source
	rec.IssueYear = issueYear
	return rec, nil
}
