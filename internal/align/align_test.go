package align

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periodical-labs/readlevel/internal/corpus"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func issue(s string) corpus.Issue {
	d := date(s)
	return corpus.Issue{Year: d.Year(), IssueDate: d, URL: "https://example.com/magazine/" + s}
}

func webArticle(id, url, title, published string) corpus.Article {
	return corpus.Article{
		ID:            id,
		URL:           url,
		Source:        corpus.SourceWeb,
		Title:         title,
		PublishedDate: date(published),
		RawText:       "text",
	}
}

func TestAlignWindowInclusive(t *testing.T) {
	issues := []corpus.Issue{issue("1995-06-10")}

	tests := []struct {
		name      string
		published string
		aligned   bool
	}{
		{"same day", "1995-06-10", true},
		{"three days before", "1995-06-07", true},
		{"three days after", "1995-06-13", true},
		{"four days after", "1995-06-14", false},
		{"four days before", "1995-06-06", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := webArticle("w1", "https://example.com/news/a", "A Story", tt.published)
			result, err := Align(issues, nil, []corpus.Article{w}, 3)
			require.NoError(t, err)
			require.Len(t, result.Aligned, 1)

			got := result.Aligned[0]
			if tt.aligned {
				require.NotNil(t, got.IssueYear)
				assert.Equal(t, 1995, *got.IssueYear)
				assert.Contains(t, result.Issues[0].MemberArticleIDs, "w1")
			} else {
				assert.Nil(t, got.IssueYear)
				assert.Empty(t, result.Issues[0].MemberArticleIDs)
			}
		})
	}
}

func TestAlignTieBreaksToEarlierIssue(t *testing.T) {
	// 1995-06-12 is two days from each issue.
	pair := []corpus.Issue{issue("1995-06-14"), issue("1995-06-10")}
	mid := webArticle("w2", "https://example.com/news/mid", "Mid Story", "1995-06-12")
	result, err := Align(pair, nil, []corpus.Article{mid}, 3)
	require.NoError(t, err)
	require.Len(t, result.Aligned, 1)

	got := result.Aligned[0]
	require.NotNil(t, got.IssueDate)
	assert.Equal(t, date("1995-06-10"), *got.IssueDate)
}

func TestAlignPrefersNearestIssue(t *testing.T) {
	issues := []corpus.Issue{issue("1995-06-10"), issue("1995-06-17")}
	w := webArticle("w1", "https://example.com/news/near", "Near Story", "1995-06-16")
	result, err := Align(issues, nil, []corpus.Article{w}, 3)
	require.NoError(t, err)

	got := result.Aligned[0]
	require.NotNil(t, got.IssueDate)
	assert.Equal(t, date("1995-06-17"), *got.IssueDate)
}

func TestAlignExcludesDuplicateByURL(t *testing.T) {
	issues := []corpus.Issue{issue("1995-06-10")}
	issueDate := date("1995-06-10")
	mag := corpus.Article{
		ID:            "m1",
		URL:           "https://example.com/magazine/1995/06/10/story",
		Source:        corpus.SourceMagazine,
		Title:         "The Story",
		PublishedDate: issueDate,
		IssueDate:     &issueDate,
	}
	// Same URL up to tracking params.
	w := webArticle("w1", "https://example.com/magazine/1995/06/10/story?utm_source=feed", "Other Title", "1995-06-20")

	result, err := Align(issues, []corpus.Article{mag}, []corpus.Article{w}, 3)
	require.NoError(t, err)
	assert.Empty(t, result.Aligned)
	require.Len(t, result.Excluded, 1)
	assert.Equal(t, "m1", result.Excluded[0].DuplicateOf)
	assert.Equal(t, "url", result.Excluded[0].Reason)
}

func TestAlignExcludesDuplicateByTitleWithinWindow(t *testing.T) {
	issues := []corpus.Issue{issue("1995-06-10")}
	issueDate := date("1995-06-10")
	mag := corpus.Article{
		ID:            "m1",
		URL:           "https://example.com/magazine/1995/06/10/story",
		Source:        corpus.SourceMagazine,
		Title:         "The Talk of the Town!",
		PublishedDate: issueDate,
		IssueDate:     &issueDate,
	}

	dup := webArticle("w1", "https://example.com/news/talk", "the talk of the town", "1995-06-12")
	farAway := webArticle("w2", "https://example.com/news/talk-later", "The Talk of the Town", "1995-07-20")

	result, err := Align(issues, []corpus.Article{mag}, []corpus.Article{dup, farAway}, 3)
	require.NoError(t, err)

	require.Len(t, result.Excluded, 1)
	assert.Equal(t, "w1", result.Excluded[0].Article.ID)
	assert.Equal(t, "title+window", result.Excluded[0].Reason)

	// The same title far outside the window is a coincidence, not a dupe.
	require.Len(t, result.Aligned, 1)
	assert.Equal(t, "w2", result.Aligned[0].ID)
}

func TestAlignDoesNotMutateInputs(t *testing.T) {
	issues := []corpus.Issue{issue("1995-06-10")}
	w := webArticle("w1", "https://example.com/news/a", "A Story", "1995-06-10")

	_, err := Align(issues, nil, []corpus.Article{w}, 3)
	require.NoError(t, err)

	assert.Empty(t, issues[0].MemberArticleIDs)
	assert.Nil(t, w.IssueYear)
}

func TestCanonicalTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Talk of the Town", "the talk of the town"},
		{"  What's   New?  ", "what s new"},
		{"Hyphen-ated: A Tale", "hyphen ated a tale"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalTitle(tt.in), "title %q", tt.in)
	}
}
