// Package corpus defines the normalized article model and its on-disk
// store, partitioned by source type and year.
package corpus

import (
	"regexp"
	"strings"
	"time"
)

// Source identifies which crawl stream produced an article.
type Source string

// Article sources.
const (
	SourceMagazine Source = "magazine"
	SourceWeb      Source = "web"
)

// Article is one normalized article record. RawText is extracted text,
// not markup; consumers downstream of the extractor never see HTML.
type Article struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	Source        Source     `json:"source"`
	Title         string     `json:"title"`
	Author        string     `json:"author,omitempty"`
	Section       string     `json:"section,omitempty"`
	PublishedDate time.Time  `json:"published_date"`
	IssueDate     *time.Time `json:"issue_date,omitempty"`
	// IssueYear is set only for magazine articles and for web articles
	// successfully aligned to an issue.
	IssueYear     *int   `json:"issue_year,omitempty"`
	RawText       string `json:"raw_text"`
	WordCount     int    `json:"word_count"`
	SentenceCount int    `json:"sentence_count"`
}

// Year derives the partition year: the issue year when known, otherwise
// the publication year.
func (a Article) Year() int {
	if a.IssueYear != nil {
		return *a.IssueYear
	}
	if !a.PublishedDate.IsZero() {
		return a.PublishedDate.Year()
	}
	return 0
}

// Issue is a single dated release of the periodical.
type Issue struct {
	Year             int       `json:"year"`
	IssueDate        time.Time `json:"issue_date"`
	URL              string    `json:"url"`
	MemberArticleIDs []string  `json:"member_article_ids"`
}

// AddMember appends id to the issue, preserving set semantics.
func (i *Issue) AddMember(id string) {
	for _, existing := range i.MemberArticleIDs {
		if existing == id {
			return
		}
	}
	i.MemberArticleIDs = append(i.MemberArticleIDs, id)
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	slugRe       = regexp.MustCompile(`[^a-z0-9\-]+`)
)

// Slugify turns a title (or URL) into a safe filename stem.
func Slugify(text string) string {
	const maxLen = 80
	text = strings.ToLower(strings.TrimSpace(text))
	text = whitespaceRe.ReplaceAllString(text, "-")
	text = slugRe.ReplaceAllString(text, "-")
	text = strings.Trim(text, "-")
	if len(text) > maxLen {
		text = strings.TrimRight(text[:maxLen], "-")
	}
	if text == "" {
		return "untitled"
	}
	return text
}
