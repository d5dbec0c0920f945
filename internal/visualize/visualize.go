// Package visualize renders yearly readability trends as a standalone
// HTML page of line charts.
package visualize

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/periodical-labs/readlevel/internal/aggregate"
)

// WriteTrends renders one chart per metric from year-scoped rows into a
// single HTML file. Rows are expected sorted by key, which Group
// guarantees.
func WriteTrends(path string, rows []aggregate.Row) error {
	years := make([]string, 0, len(rows))
	for _, r := range rows {
		years = append(years, r.Key)
	}

	page := components.NewPage()
	page.PageTitle = "Readability trends"
	page.AddCharts(
		trendChart("Flesch Reading Ease", years, rows, func(r aggregate.Row) aggregate.Summary { return r.Flesch }),
		trendChart("Gunning Fog", years, rows, func(r aggregate.Row) aggregate.Summary { return r.GunningFog }),
		trendChart("Dale-Chall", years, rows, func(r aggregate.Row) aggregate.Summary { return r.DaleChall }),
	)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	return nil
}

func trendChart(title string, years []string, rows []aggregate.Row, pick func(aggregate.Row) aggregate.Summary) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "year"}),
	)

	median := make([]opts.LineData, len(rows))
	p25 := make([]opts.LineData, len(rows))
	p75 := make([]opts.LineData, len(rows))
	for i, r := range rows {
		s := pick(r)
		median[i] = opts.LineData{Value: s.Median}
		p25[i] = opts.LineData{Value: s.P25}
		p75[i] = opts.LineData{Value: s.P75}
	}

	line.SetXAxis(years).
		AddSeries("median", median).
		AddSeries("p25", p25).
		AddSeries("p75", p75)
	return line
}
