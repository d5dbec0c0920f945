// Package report persists metric records and renders the CSV outputs.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/periodical-labs/readlevel/internal/aggregate"
	"github.com/periodical-labs/readlevel/internal/readability"
)

// SaveRecords writes the per-article records as a JSON array so a later
// aggregate run can pick them up without recomputing.
func SaveRecords(path string, records []readability.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadRecords reads records written by SaveRecords.
func LoadRecords(path string) ([]readability.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var records []readability.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// WriteArticleCSV writes one row per scored article.
func WriteArticleCSV(path string, records []readability.Record) error {
	return writeCSV(path, func(w *csv.Writer) error {
		header := []string{
			"article_id", "url", "source", "issue_year", "issue_date",
			"flesch", "gunning_fog", "dale_chall",
			"word_count", "sentence_count",
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, r := range records {
			year := ""
			if r.IssueYear != nil {
				year = strconv.Itoa(*r.IssueYear)
			}
			row := []string{
				r.ArticleID, r.URL, r.Source, year, r.IssueDate,
				formatFloat(r.Flesch), formatFloat(r.GunningFog), formatFloat(r.DaleChall),
				strconv.Itoa(r.WordCount), strconv.Itoa(r.SentenceCount),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSummaryCSV writes one row per aggregated group.
func WriteSummaryCSV(path string, rows []aggregate.Row) error {
	return writeCSV(path, func(w *csv.Writer) error {
		header := []string{
			"scope", "key", "n",
			"flesch_median", "flesch_p25", "flesch_p75",
			"gunning_fog_median", "gunning_fog_p25", "gunning_fog_p75",
			"dale_chall_median", "dale_chall_p25", "dale_chall_p75",
			"clipped",
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, r := range rows {
			row := []string{
				string(r.Scope), r.Key, strconv.Itoa(r.N),
				formatFloat(r.Flesch.Median), formatFloat(r.Flesch.P25), formatFloat(r.Flesch.P75),
				formatFloat(r.GunningFog.Median), formatFloat(r.GunningFog.P25), formatFloat(r.GunningFog.P75),
				formatFloat(r.DaleChall.Median), formatFloat(r.DaleChall.P25), formatFloat(r.DaleChall.P75),
				strconv.FormatBool(r.Clipped),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, fill func(*csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write csv: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	return os.Rename(tmp, path)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
