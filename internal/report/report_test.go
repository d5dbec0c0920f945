package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periodical-labs/readlevel/internal/aggregate"
	"github.com/periodical-labs/readlevel/internal/readability"
)

func sampleRecords() []readability.Record {
	year := 1995
	return []readability.Record{
		{
			ArticleID: "a1",
			URL:       "https://example.com/magazine/1995/06/10/story",
			Source:    "magazine",
			IssueYear: &year,
			IssueDate: "1995-06-10",
			Flesch:    62.5, GunningFog: 11.25, DaleChall: 7.1,
			WordCount: 1200, SentenceCount: 60,
		},
		{
			ArticleID: "a2",
			URL:       "https://example.com/news/piece",
			Source:    "web",
			Flesch:    70, GunningFog: 9, DaleChall: 6,
			WordCount: 400, SentenceCount: 25,
		},
	}
}

func TestSaveAndLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics", "records.json")
	want := sampleRecords()

	require.NoError(t, SaveRecords(path, want))
	got, err := LoadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = LoadRecords(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestWriteArticleCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")
	require.NoError(t, WriteArticleCSV(path, sampleRecords()))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "article_id", rows[0][0])

	assert.Equal(t, "a1", rows[1][0])
	assert.Equal(t, "1995", rows[1][3])
	assert.Equal(t, "62.5000", rows[1][5])

	// Unaligned web article: empty issue columns, not zeros.
	assert.Equal(t, "a2", rows[2][0])
	assert.Equal(t, "", rows[2][3])
	assert.Equal(t, "", rows[2][4])
}

func TestWriteSummaryCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "by_year.csv")
	rows := []aggregate.Row{
		{
			Scope: aggregate.ScopeYear,
			Key:   "1995",
			N:     42,
			Flesch: aggregate.Summary{
				Median: 60, P25: 55, P75: 65,
			},
			GunningFog: aggregate.Summary{Median: 11, P25: 10, P75: 12},
			DaleChall:  aggregate.Summary{Median: 7, P25: 6.5, P75: 7.5},
			Clipped:    true,
		},
	}
	require.NoError(t, WriteSummaryCSV(path, rows))

	got := readCSV(t, path)
	require.Len(t, got, 2)
	assert.Equal(t, "scope", got[0][0])
	assert.Equal(t, "year", got[1][0])
	assert.Equal(t, "1995", got[1][1])
	assert.Equal(t, "42", got[1][2])
	assert.Equal(t, "60.0000", got[1][3])
	assert.Equal(t, "true", got[1][12])
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
