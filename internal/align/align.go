// Package align reconciles the two independently crawled corpora: it
// assigns web-only articles to the nearest issue by date window and
// excludes web articles that duplicate magazine content.
package align

import (
	"fmt"
	"sort"
	"time"

	"github.com/periodical-labs/readlevel/internal/cache"
	"github.com/periodical-labs/readlevel/internal/corpus"
)

// DefaultWindowDays is the alignment tolerance around an issue date.
const DefaultWindowDays = 3

// AmbiguousDateError is raised only if a window tie cannot be broken
// deterministically. The earlier-issue tie rule makes this unreachable
// in practice, but the taxonomy keeps it explicit.
type AmbiguousDateError struct {
	ArticleID string
	Date      time.Time
}

func (e *AmbiguousDateError) Error() string {
	return fmt.Sprintf("ambiguous issue date for article %s at %s",
		e.ArticleID, e.Date.Format("2006-01-02"))
}

// Exclusion records why a web article was dropped as a duplicate.
type Exclusion struct {
	Article     corpus.Article
	DuplicateOf string
	Reason      string
}

// Result carries the aligned web set plus the exclusions and the issues
// with their member sets filled in.
type Result struct {
	Aligned  []corpus.Article
	Excluded []Exclusion
	Issues   []corpus.Issue
}

// Align assigns web articles to issues within ±windowDays (inclusive both
// ends) and removes duplicates of magazine articles. Ties between two
// issues equidistant from an article's date break toward the earlier
// issue. Articles outside every window are returned unaligned with
// IssueYear nil. Inputs are never mutated.
func Align(issues []corpus.Issue, magazine, web []corpus.Article, windowDays int) (Result, error) {
	if windowDays < 0 {
		windowDays = DefaultWindowDays
	}

	sorted := make([]corpus.Issue, len(issues))
	copy(sorted, issues)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].IssueDate.Before(sorted[j].IssueDate)
	})

	// Magazine members belong to their issue unconditionally; the set
	// invariant (no article in two issues) holds because each magazine
	// article carries exactly one issue date.
	for _, m := range magazine {
		if m.IssueDate == nil {
			continue
		}
		for i := range sorted {
			if sameDate(sorted[i].IssueDate, *m.IssueDate) {
				sorted[i].AddMember(m.ID)
				break
			}
		}
	}

	result := Result{Issues: sorted}

	for _, w := range web {
		if dup, reason, ok := findDuplicate(w, magazine, windowDays); ok {
			result.Excluded = append(result.Excluded, Exclusion{
				Article:     w,
				DuplicateOf: dup.ID,
				Reason:      reason,
			})
			continue
		}

		aligned := w
		if issueIdx, ok := nearestIssue(sorted, w.PublishedDate, windowDays); ok {
			year := sorted[issueIdx].Year
			date := sorted[issueIdx].IssueDate
			aligned.IssueYear = &year
			aligned.IssueDate = &date
			sorted[issueIdx].AddMember(w.ID)
		}
		result.Aligned = append(result.Aligned, aligned)
	}

	result.Issues = sorted
	return result, nil
}

// nearestIssue returns the index of the issue whose date is closest to
// published, provided the distance is within the window. Exact ties go
// to the earlier issue; scanning in date order and requiring a strictly
// smaller distance to switch makes that automatic.
func nearestIssue(sorted []corpus.Issue, published time.Time, windowDays int) (int, bool) {
	if published.IsZero() {
		return 0, false
	}
	best := -1
	bestDist := 0
	for i := range sorted {
		dist := dayDistance(published, sorted[i].IssueDate)
		if dist > windowDays {
			continue
		}
		if best == -1 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best, best != -1
}

func findDuplicate(w corpus.Article, magazine []corpus.Article, windowDays int) (corpus.Article, string, bool) {
	wURL := normalizedURL(w.URL)
	wTitle := CanonicalTitle(w.Title)

	for _, m := range magazine {
		if wURL != "" && wURL == normalizedURL(m.URL) {
			return m, "url", true
		}
		if wTitle == "" || wTitle != CanonicalTitle(m.Title) {
			continue
		}
		mDate := m.PublishedDate
		if m.IssueDate != nil {
			mDate = *m.IssueDate
		}
		if w.PublishedDate.IsZero() || mDate.IsZero() {
			continue
		}
		if dayDistance(w.PublishedDate, mDate) <= windowDays {
			return m, "title+window", true
		}
	}
	return corpus.Article{}, "", false
}

func normalizedURL(raw string) string {
	normalized, err := cache.NormalizeURL(raw)
	if err != nil {
		return raw
	}
	return normalized
}

// dayDistance is the absolute difference between two dates in whole
// days, at date granularity.
func dayDistance(a, b time.Time) int {
	diff := int(truncateDate(a).Sub(truncateDate(b)).Hours() / 24)
	if diff < 0 {
		return -diff
	}
	return diff
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	return truncateDate(a).Equal(truncateDate(b))
}
