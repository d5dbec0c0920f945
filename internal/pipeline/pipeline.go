// Package pipeline wires the fetch, extract, align, and metrics stages
// into the operations the CLI exposes. Each stage reads and writes the
// partitioned on-disk stores, so every operation can resume or rerun
// independently.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/periodical-labs/readlevel/internal/aggregate"
	"github.com/periodical-labs/readlevel/internal/align"
	"github.com/periodical-labs/readlevel/internal/cache"
	"github.com/periodical-labs/readlevel/internal/config"
	"github.com/periodical-labs/readlevel/internal/corpus"
	"github.com/periodical-labs/readlevel/internal/extract"
	"github.com/periodical-labs/readlevel/internal/fetcher"
	"github.com/periodical-labs/readlevel/internal/readability"
	"github.com/periodical-labs/readlevel/internal/report"
	"github.com/periodical-labs/readlevel/internal/scrape"
	"github.com/periodical-labs/readlevel/internal/visualize"
)

// Pipeline binds the configured components for one run.
type Pipeline struct {
	cfg     config.Config
	corpus  *corpus.Store
	client  *fetcher.Client
	scraper *scrape.Scraper
	engine  *readability.Engine
	logger  *zap.Logger
}

// New assembles a pipeline from configuration and an already-built fetch
// client (the CLI owns the renderer's lifecycle).
func New(cfg config.Config, client *fetcher.Client, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := corpus.NewStore(cfg.Storage.CorpusDir)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:     cfg,
		corpus:  store,
		client:  client,
		scraper: scrape.New(client, cfg.Site.BaseURL, cfg.Site.SitemapIndex, logger),
		engine:  readability.NewEngine(nil),
		logger:  logger,
	}, nil
}

// FetchSummary reports what one acquisition pass did.
type FetchSummary struct {
	Issues    int
	Fetched   int
	FromCache int
	Skipped   int
}

// FetchMagazine crawls every issue of the given years and stores each
// article. Failed articles are logged and skipped; the crawl keeps going.
func (p *Pipeline) FetchMagazine(ctx context.Context, years []int) (FetchSummary, error) {
	var summary FetchSummary
	for _, year := range years {
		issues, err := p.scraper.IssuesForYear(ctx, year)
		if err != nil {
			return summary, fmt.Errorf("discover issues for %d: %w", year, err)
		}
		p.logger.Info("discovered issues", zap.Int("year", year), zap.Int("count", len(issues)))

		for _, issue := range issues {
			summary.Issues++
			urls, err := p.scraper.IssueArticleURLs(ctx, issue.URL)
			if err != nil {
				p.logger.Warn("issue page failed; skipping issue",
					zap.String("issue", issue.URL), zap.Error(err))
				summary.Skipped++
				continue
			}
			for _, u := range urls {
				if err := ctx.Err(); err != nil {
					return summary, err
				}
				article, fromCache, err := p.fetchArticle(ctx, u, corpus.SourceMagazine)
				if err != nil {
					p.logger.Warn("article failed; skipping",
						zap.String("url", u), zap.Error(err))
					summary.Skipped++
					continue
				}
				date := issue.IssueDate
				yr := issue.Year
				article.IssueDate = &date
				article.IssueYear = &yr
				if err := p.corpus.Put(article); err != nil {
					return summary, err
				}
				issue.AddMember(article.ID)
				summary.Fetched++
				if fromCache {
					summary.FromCache++
				}
			}
			if err := p.corpus.PutIssue(issue); err != nil {
				return summary, err
			}
		}
	}
	p.logger.Info("magazine fetch complete",
		zap.Int("issues", summary.Issues),
		zap.Int("fetched", summary.Fetched),
		zap.Int("from_cache", summary.FromCache),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// FetchWeb crawls web-only articles published within the alignment window
// of each stored issue. Issues must have been fetched first.
func (p *Pipeline) FetchWeb(ctx context.Context, years []int) (FetchSummary, error) {
	issues, err := p.corpus.LoadIssues()
	if err != nil {
		return FetchSummary{}, err
	}
	wanted := make(map[int]struct{}, len(years))
	for _, y := range years {
		wanted[y] = struct{}{}
	}

	var summary FetchSummary
	seen := make(map[string]struct{})
	for _, issue := range issues {
		if len(wanted) > 0 {
			if _, ok := wanted[issue.Year]; !ok {
				continue
			}
		}
		summary.Issues++
		candidates, err := p.scraper.WebURLsInWindow(ctx, issue, p.cfg.Align.WindowDays)
		if err != nil {
			p.logger.Warn("web window failed; skipping issue",
				zap.String("issue", issue.URL), zap.Error(err))
			summary.Skipped++
			continue
		}
		for _, cand := range candidates {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			norm, err := cache.NormalizeURL(cand.URL)
			if err != nil {
				summary.Skipped++
				continue
			}
			if _, dup := seen[norm]; dup {
				continue
			}
			seen[norm] = struct{}{}

			article, fromCache, err := p.fetchArticle(ctx, cand.URL, corpus.SourceWeb)
			if err != nil {
				p.logger.Warn("web article failed; skipping",
					zap.String("url", cand.URL), zap.Error(err))
				summary.Skipped++
				continue
			}
			if article.PublishedDate.IsZero() {
				article.PublishedDate = cand.LastMod
			}
			if err := p.corpus.Put(article); err != nil {
				return summary, err
			}
			summary.Fetched++
			if fromCache {
				summary.FromCache++
			}
		}
	}
	p.logger.Info("web fetch complete",
		zap.Int("issues", summary.Issues),
		zap.Int("fetched", summary.Fetched),
		zap.Int("from_cache", summary.FromCache),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// fetchArticle retrieves, extracts, and normalizes one article. The ID is
// derived from the normalized URL so reruns produce the same record file.
func (p *Pipeline) fetchArticle(ctx context.Context, rawURL string, source corpus.Source) (corpus.Article, bool, error) {
	resp, err := p.client.Fetch(ctx, fetcher.Request{URL: rawURL})
	if err != nil {
		return corpus.Article{}, false, err
	}

	extraction, err := extract.FromHTML(resp.Body, rawURL)
	if err != nil {
		return corpus.Article{}, false, err
	}

	norm, err := cache.NormalizeURL(rawURL)
	if err != nil {
		norm = rawURL
	}

	article := corpus.Article{
		ID:            uuid.NewSHA1(uuid.NameSpaceURL, []byte(norm)).String(),
		URL:           rawURL,
		Source:        source,
		Title:         extraction.Title,
		Author:        extraction.Author,
		Section:       extraction.Section,
		PublishedDate: extraction.Published,
		RawText:       extraction.Text,
		WordCount:     len(readability.Words(extraction.Text)),
		SentenceCount: len(readability.Sentences(extraction.Text)),
	}
	return article, resp.FromCache, nil
}

// MetricsSummary reports a compute-metrics pass.
type MetricsSummary struct {
	Scored   int
	Excluded int
	Failed   int
}

// ComputeMetrics aligns the stored corpora, drops duplicates, scores
// every surviving article, and writes the record file plus the
// per-article CSV.
func (p *Pipeline) ComputeMetrics(ctx context.Context) (MetricsSummary, error) {
	var summary MetricsSummary

	issues, err := p.corpus.LoadIssues()
	if err != nil {
		return summary, err
	}
	magazine, err := p.corpus.LoadSource(corpus.SourceMagazine)
	if err != nil {
		return summary, err
	}
	web, err := p.corpus.LoadSource(corpus.SourceWeb)
	if err != nil {
		return summary, err
	}

	result, err := align.Align(issues, magazine, web, p.cfg.Align.WindowDays)
	if err != nil {
		return summary, err
	}
	summary.Excluded = len(result.Excluded)
	for _, ex := range result.Excluded {
		p.logger.Info("excluded duplicate",
			zap.String("article", ex.Article.URL),
			zap.String("duplicate_of", ex.DuplicateOf),
			zap.String("reason", ex.Reason),
		)
	}

	scorable := append(append([]corpus.Article(nil), magazine...), result.Aligned...)
	records := make([]readability.Record, 0, len(scorable))
	for _, a := range scorable {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		rec, err := p.engine.Score(a.ID, a.URL, string(a.Source), a.IssueYear, a.RawText)
		if err != nil {
			p.logger.Warn("scoring failed; skipping", zap.String("url", a.URL), zap.Error(err))
			summary.Failed++
			continue
		}
		if a.IssueDate != nil {
			rec.IssueDate = a.IssueDate.Format("2006-01-02")
		}
		if !a.PublishedDate.IsZero() {
			rec.PublishedYear = a.PublishedDate.Year()
		}
		records = append(records, rec)
		summary.Scored++
	}

	if err := report.SaveRecords(p.recordsPath(), records); err != nil {
		return summary, err
	}
	if err := report.WriteArticleCSV(filepath.Join(p.cfg.Storage.MetricsDir, "articles.csv"), records); err != nil {
		return summary, err
	}
	p.logger.Info("metrics computed",
		zap.Int("scored", summary.Scored),
		zap.Int("excluded", summary.Excluded),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// Aggregate rolls the stored records up to per-issue and per-year CSVs.
func (p *Pipeline) Aggregate() error {
	records, err := report.LoadRecords(p.recordsPath())
	if err != nil {
		return err
	}
	opts := aggregate.Options{Clip: p.cfg.Metrics.Clip}

	byIssue := aggregate.Group(aggregate.ScopeIssue, records, aggregate.ByIssue, opts)
	if err := report.WriteSummaryCSV(filepath.Join(p.cfg.Storage.MetricsDir, "by_issue.csv"), byIssue); err != nil {
		return err
	}
	byYear := aggregate.Group(aggregate.ScopeYear, records, aggregate.ByYear, opts)
	if err := report.WriteSummaryCSV(filepath.Join(p.cfg.Storage.MetricsDir, "by_year.csv"), byYear); err != nil {
		return err
	}
	p.logger.Info("aggregates written",
		zap.Int("issues", len(byIssue)),
		zap.Int("years", len(byYear)),
	)
	return nil
}

// Visualize renders yearly trend charts from the stored records.
func (p *Pipeline) Visualize() error {
	records, err := report.LoadRecords(p.recordsPath())
	if err != nil {
		return err
	}
	rows := aggregate.Group(aggregate.ScopeYear, records, aggregate.ByYear,
		aggregate.Options{Clip: p.cfg.Metrics.Clip})
	out := filepath.Join(p.cfg.Storage.MetricsDir, "trends.html")
	if err := visualize.WriteTrends(out, rows); err != nil {
		return err
	}
	p.logger.Info("trend charts written", zap.String("path", out))
	return nil
}

func (p *Pipeline) recordsPath() string {
	return filepath.Join(p.cfg.Storage.MetricsDir, "records.json")
}

// YearsFromRange expands a [from, to] pair into the year list the fetch
// operations take. A zero "to" means a single year.
func YearsFromRange(from, to int) ([]int, error) {
	if from <= 0 {
		return nil, fmt.Errorf("a start year is required")
	}
	if to == 0 {
		to = from
	}
	if to < from {
		return nil, fmt.Errorf("year range %d-%d is inverted", from, to)
	}
	if to > time.Now().Year()+1 {
		return nil, fmt.Errorf("year %d is in the future", to)
	}
	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return years, nil
}
