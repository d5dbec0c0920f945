// Package scrape discovers issue and web-only article URLs from the
// periodical's archive pages and sitemaps.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/periodical-labs/readlevel/internal/corpus"
	"github.com/periodical-labs/readlevel/internal/fetcher"
)

var (
	issueLinkRe       = regexp.MustCompile(`^/magazine/(\d{4})/(\d{2})/(\d{2})/?$`)
	magazineArticleRe = regexp.MustCompile(`^/magazine/\d{4}/\d{2}/\d{2}/[\w\-]+/?$`)
)

// Fetcher is the slice of the fetch client the scraper needs.
type Fetcher interface {
	Fetch(ctx context.Context, req fetcher.Request) (fetcher.Response, error)
}

// Scraper walks archive pages and sitemaps through the caching fetcher.
type Scraper struct {
	client       Fetcher
	baseURL      string
	sitemapIndex string
	logger       *zap.Logger
}

// New builds a Scraper. sitemapIndex is a path relative to baseURL.
func New(client Fetcher, baseURL, sitemapIndex string, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		client:       client,
		baseURL:      strings.TrimRight(baseURL, "/"),
		sitemapIndex: sitemapIndex,
		logger:       logger,
	}
}

// IssuesForYear parses the year's archive page and returns its issues,
// sorted by date.
func (s *Scraper) IssuesForYear(ctx context.Context, year int) ([]corpus.Issue, error) {
	archiveURL := fmt.Sprintf("%s/magazine/%d", s.baseURL, year)
	resp, err := s.client.Fetch(ctx, fetcher.Request{URL: archiveURL, Type: "archive"})
	if err != nil {
		return nil, fmt.Errorf("fetch archive %d: %w", year, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse archive %d: %w", year, err)
	}

	seen := make(map[string]corpus.Issue)
	doc.Find(`a[href^="/magazine/"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		m := issueLinkRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		date, err := time.Parse("2006-01-02", fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]))
		if err != nil {
			return
		}
		abs := s.absURL(strings.TrimRight(href, "/"))
		seen[abs] = corpus.Issue{
			Year:      date.Year(),
			IssueDate: date,
			URL:       abs,
		}
	})

	issues := make([]corpus.Issue, 0, len(seen))
	for _, issue := range seen {
		issues = append(issues, issue)
	}
	sort.Slice(issues, func(i, j int) bool {
		return issues[i].IssueDate.Before(issues[j].IssueDate)
	})
	return issues, nil
}

// IssueArticleURLs returns the article URLs listed on an issue page.
func (s *Scraper) IssueArticleURLs(ctx context.Context, issueURL string) ([]string, error) {
	resp, err := s.client.Fetch(ctx, fetcher.Request{URL: issueURL, Type: "archive"})
	if err != nil {
		return nil, fmt.Errorf("fetch issue page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse issue page: %w", err)
	}

	seen := make(map[string]struct{})
	doc.Find(`a[href^="/magazine/"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if magazineArticleRe.MatchString(href) {
			seen[s.absURL(strings.TrimRight(href, "/"))] = struct{}{}
		}
	})

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls, nil
}

func (s *Scraper) absURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return s.baseURL + "/" + strings.TrimLeft(href, "/")
}
