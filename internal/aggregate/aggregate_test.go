package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periodical-labs/readlevel/internal/readability"
)

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, Percentile(sorted, 50), 1e-9)
	assert.InDelta(t, 1.75, Percentile(sorted, 25), 1e-9)
	assert.InDelta(t, 3.25, Percentile(sorted, 75), 1e-9)
	assert.InDelta(t, 1.0, Percentile(sorted, 0), 1e-9)
	assert.InDelta(t, 4.0, Percentile(sorted, 100), 1e-9)

	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 50))
}

func record(year int, fog float64) readability.Record {
	y := year
	return readability.Record{
		IssueYear:  &y,
		GunningFog: fog,
		Flesch:     fog,
		DaleChall:  fog,
	}
}

func TestGroupMedianShrugsOffOutliers(t *testing.T) {
	// Nineteen ordinary essays and one listicle with a wild score: the
	// median must stay with the ordinary essays.
	var records []readability.Record
	for i := 0; i < 19; i++ {
		records = append(records, record(1995, 10))
	}
	records = append(records, record(1995, 1000))

	rows := Group(ScopeYear, records, ByYear, Options{})
	require.Len(t, rows, 1)
	assert.Equal(t, 20, rows[0].N)
	assert.InDelta(t, 10, rows[0].GunningFog.Median, 1e-9)
	assert.InDelta(t, 10, rows[0].GunningFog.P25, 1e-9)
	assert.InDelta(t, 10, rows[0].GunningFog.P75, 1e-9)
}

func TestGroupByYearSortsKeys(t *testing.T) {
	records := []readability.Record{
		record(1996, 12),
		record(1995, 11),
	}

	rows := Group(ScopeYear, records, ByYear, Options{})
	require.Len(t, rows, 2)
	assert.Equal(t, "1995", rows[0].Key)
	assert.Equal(t, "1996", rows[1].Key)
	assert.Equal(t, ScopeYear, rows[0].Scope)
}

func TestByYearFallsBackToPublishedYear(t *testing.T) {
	// A web article outside every issue window has no issue year, but its
	// publication date still places it in a yearly aggregate.
	unaligned := readability.Record{PublishedYear: 1995, GunningFog: 9, Flesch: 9, DaleChall: 9}
	undated := readability.Record{GunningFog: 99}

	rows := Group(ScopeYear, []readability.Record{record(1995, 11), unaligned, undated}, ByYear, Options{})
	require.Len(t, rows, 1)
	assert.Equal(t, "1995", rows[0].Key)
	assert.Equal(t, 2, rows[0].N)
	assert.InDelta(t, 10, rows[0].GunningFog.Median, 1e-9)

	// The issue year wins when both are present.
	aligned := record(1996, 10)
	aligned.PublishedYear = 1995
	assert.Equal(t, "1996", ByYear(aligned))
}

func TestGroupByIssue(t *testing.T) {
	a := record(1995, 10)
	a.IssueDate = "1995-06-10"
	b := record(1995, 14)
	b.IssueDate = "1995-06-10"
	c := record(1995, 8)
	c.IssueDate = "1995-06-17"

	rows := Group(ScopeIssue, []readability.Record{a, b, c}, ByIssue, Options{})
	require.Len(t, rows, 2)
	assert.Equal(t, "1995-06-10", rows[0].Key)
	assert.Equal(t, 2, rows[0].N)
	assert.InDelta(t, 12, rows[0].GunningFog.Median, 1e-9)
	assert.Equal(t, "1995-06-17", rows[1].Key)
	assert.Equal(t, 1, rows[1].N)
}

func TestGroupClipRemovesOutlierRecords(t *testing.T) {
	var records []readability.Record
	for _, v := range []float64{0, 1, 2, 3, 1000} {
		records = append(records, record(1995, v))
	}

	rows := Group(ScopeYear, records, ByYear, Options{Clip: true})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Clipped)

	// Both tail records fall outside [P1, P99] and are removed, not
	// clamped: the summaries are computed over [1, 2, 3] alone and N
	// reports the survivors.
	assert.Equal(t, 3, rows[0].N)
	assert.InDelta(t, 2, rows[0].GunningFog.Median, 1e-9)
	assert.InDelta(t, 1.5, rows[0].GunningFog.P25, 1e-9)
	assert.InDelta(t, 2.5, rows[0].GunningFog.P75, 1e-9)
}

func TestGroupClipSkipsTinyGroups(t *testing.T) {
	records := []readability.Record{record(1995, 1), record(1995, 1000)}

	rows := Group(ScopeYear, records, ByYear, Options{Clip: true})
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].N, "two records leave nothing to bound outliers with")
}

func TestGroupDoesNotMutateInput(t *testing.T) {
	records := []readability.Record{record(1995, 1000), record(1995, 1)}
	before := records[0].GunningFog

	_ = Group(ScopeYear, records, ByYear, Options{Clip: true})
	assert.Equal(t, before, records[0].GunningFog)
}
