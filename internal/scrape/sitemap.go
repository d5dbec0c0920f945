package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"

	"github.com/periodical-labs/readlevel/internal/corpus"
	"github.com/periodical-labs/readlevel/internal/fetcher"
)

// WebCandidate is a sitemap URL with its last-modified date.
type WebCandidate struct {
	URL     string
	LastMod time.Time
}

// WebURLsInWindow walks the sitemap index and returns web-only URLs whose
// last-modified date falls within ±radiusDays of the issue date,
// inclusive on both ends. Magazine-namespace URLs are excluded since the
// magazine crawl owns them.
func (s *Scraper) WebURLsInWindow(ctx context.Context, issue corpus.Issue, radiusDays int) ([]WebCandidate, error) {
	start := issue.IssueDate.AddDate(0, 0, -radiusDays)
	end := issue.IssueDate.AddDate(0, 0, radiusDays)

	sitemaps, err := s.sitemapLocations(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var candidates []WebCandidate
	for _, sm := range sitemaps {
		entries, err := s.sitemapEntries(ctx, sm)
		if err != nil {
			// One broken child sitemap should not sink the whole window.
			s.logger.Warn("sitemap fetch failed; skipping",
				zap.String("sitemap", sm),
				zap.Error(err),
			)
			continue
		}
		for _, entry := range entries {
			if !strings.HasPrefix(entry.URL, s.baseURL) {
				continue
			}
			if strings.Contains(entry.URL, "/magazine/") {
				continue
			}
			if entry.LastMod.IsZero() {
				continue
			}
			if dateBefore(entry.LastMod, start) || dateAfter(entry.LastMod, end) {
				continue
			}
			if _, dup := seen[entry.URL]; dup {
				continue
			}
			seen[entry.URL] = struct{}{}
			candidates = append(candidates, entry)
		}
	}
	return candidates, nil
}

func (s *Scraper) sitemapLocations(ctx context.Context) ([]string, error) {
	indexURL := s.baseURL + s.sitemapIndex
	resp, err := s.client.Fetch(ctx, fetcher.Request{
		URL:           indexURL,
		Type:          "sitemap",
		DisableRender: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap index: %w", err)
	}

	doc, err := xmlquery.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse sitemap index: %w", err)
	}

	var locs []string
	for _, node := range xmlquery.Find(doc, "//sitemap/loc") {
		loc := strings.TrimSpace(node.InnerText())
		if loc != "" {
			locs = append(locs, loc)
		}
	}
	return locs, nil
}

func (s *Scraper) sitemapEntries(ctx context.Context, sitemapURL string) ([]WebCandidate, error) {
	resp, err := s.client.Fetch(ctx, fetcher.Request{
		URL:           sitemapURL,
		Type:          "sitemap",
		DisableRender: true,
	})
	if err != nil {
		return nil, err
	}

	doc, err := xmlquery.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	var entries []WebCandidate
	for _, node := range xmlquery.Find(doc, "//url") {
		locNode := xmlquery.FindOne(node, "loc")
		if locNode == nil {
			continue
		}
		entry := WebCandidate{URL: strings.TrimSpace(locNode.InnerText())}
		if lastmod := xmlquery.FindOne(node, "lastmod"); lastmod != nil {
			entry.LastMod = parseLastMod(lastmod.InnerText())
		}
		if entry.URL != "" {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

var lastModLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

func parseLastMod(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range lastModLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// dateBefore compares at date granularity, ignoring time of day.
func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC).
		Before(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC))
}

func dateAfter(a, b time.Time) bool {
	return dateBefore(b, a)
}
