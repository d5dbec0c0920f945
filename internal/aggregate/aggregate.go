// Package aggregate rolls per-article readability records up to per-issue
// and per-year summaries using robust statistics, so a handful of listicle
// outliers cannot drag a whole year's score.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/periodical-labs/readlevel/internal/readability"
)

// Scope names the grouping level of a summary row.
type Scope string

const (
	ScopeIssue Scope = "issue"
	ScopeYear  Scope = "year"
)

// Summary is the robust statistic set for one metric within one group.
type Summary struct {
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
}

// Row is one aggregated group: an issue date or a year, the number of
// records the summaries were computed over, and a summary per metric.
type Row struct {
	Scope      Scope   `json:"scope"`
	Key        string  `json:"key"`
	N          int     `json:"n"`
	Flesch     Summary `json:"flesch"`
	GunningFog Summary `json:"gunning_fog"`
	DaleChall  Summary `json:"dale_chall"`
	Clipped    bool    `json:"clipped"`
}

// Options controls aggregation behavior.
type Options struct {
	// Clip removes records whose metric value falls outside the group's
	// [P1, P99] before summarizing, taming transcription artifacts. The
	// per-article records themselves are untouched.
	Clip bool
}

// KeyFunc maps a record to its group key; records mapped to "" are
// skipped (e.g. web articles outside every issue window when grouping
// by issue).
type KeyFunc func(readability.Record) string

// ByIssue groups on the aligned issue date.
func ByIssue(rec readability.Record) string {
	return rec.IssueDate
}

// ByYear groups on the aligned issue year, falling back to the year of
// the published date so web articles outside every issue window still
// reach the yearly aggregates.
func ByYear(rec readability.Record) string {
	if rec.IssueYear != nil {
		return fmt.Sprintf("%d", *rec.IssueYear)
	}
	if rec.PublishedYear > 0 {
		return fmt.Sprintf("%d", rec.PublishedYear)
	}
	return ""
}

// Group aggregates records under the given scope and key function. Input
// records are never mutated; clipping drops records from the computation
// only. N reports how many records each row's summaries were computed
// over, so a clipped row's N reflects the removals.
func Group(scope Scope, records []readability.Record, key KeyFunc, opts Options) []Row {
	groups := make(map[string][]readability.Record)
	for _, rec := range records {
		k := key(rec)
		if k == "" {
			continue
		}
		groups[k] = append(groups[k], rec)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		recs := groups[k]
		if opts.Clip {
			recs = clipOutliers(recs)
		}
		rows = append(rows, Row{
			Scope:      scope,
			Key:        k,
			N:          len(recs),
			Flesch:     summarize(values(recs, func(r readability.Record) float64 { return r.Flesch })),
			GunningFog: summarize(values(recs, func(r readability.Record) float64 { return r.GunningFog })),
			DaleChall:  summarize(values(recs, func(r readability.Record) float64 { return r.DaleChall })),
			Clipped:    opts.Clip,
		})
	}
	return rows
}

// metricGetters drives clipping uniformly across the three metrics.
var metricGetters = []func(readability.Record) float64{
	func(r readability.Record) float64 { return r.Flesch },
	func(r readability.Record) float64 { return r.GunningFog },
	func(r readability.Record) float64 { return r.DaleChall },
}

// clipOutliers removes records with any metric value outside that
// metric's [P1, P99] within the group. Bounds come from the full group,
// then the offending records are dropped from the computation. Groups too
// small to clip, or where clipping would empty the group, pass through.
func clipOutliers(recs []readability.Record) []readability.Record {
	if len(recs) <= 2 {
		return recs
	}

	type bound struct{ lo, hi float64 }
	bounds := make([]bound, len(metricGetters))
	for i, get := range metricGetters {
		sorted := values(recs, get)
		sort.Float64s(sorted)
		bounds[i] = bound{lo: Percentile(sorted, 1), hi: Percentile(sorted, 99)}
	}

	kept := make([]readability.Record, 0, len(recs))
	for _, rec := range recs {
		outlier := false
		for i, get := range metricGetters {
			if v := get(rec); v < bounds[i].lo || v > bounds[i].hi {
				outlier = true
				break
			}
		}
		if !outlier {
			kept = append(kept, rec)
		}
	}
	if len(kept) == 0 {
		return recs
	}
	return kept
}

func values(recs []readability.Record, get func(readability.Record) float64) []float64 {
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = get(r)
	}
	return out
}

func summarize(vals []float64) Summary {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	return Summary{
		Median: Percentile(sorted, 50),
		P25:    Percentile(sorted, 25),
		P75:    Percentile(sorted, 75),
	}
}

// Percentile computes the p-th percentile of an ascending-sorted slice
// with linear interpolation between closest ranks. An empty slice yields
// zero.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch n {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(rank)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
