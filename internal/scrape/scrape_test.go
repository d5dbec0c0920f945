package scrape

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periodical-labs/readlevel/internal/corpus"
	"github.com/periodical-labs/readlevel/internal/fetcher"
)

// fakeFetcher serves canned bodies by URL, standing in for the network.
type fakeFetcher struct {
	bodies map[string]string
}

func (f *fakeFetcher) Fetch(_ context.Context, req fetcher.Request) (fetcher.Response, error) {
	body, ok := f.bodies[req.URL]
	if !ok {
		return fetcher.Response{}, fmt.Errorf("no canned body for %s", req.URL)
	}
	return fetcher.Response{URL: req.URL, Body: []byte(body)}, nil
}

const base = "https://example.com"

func TestIssuesForYear(t *testing.T) {
	archive := `<html><body>
		<a href="/magazine/1995/06/10">June 10</a>
		<a href="/magazine/1995/06/10/">trailing slash duplicate</a>
		<a href="/magazine/1995/06/17">June 17</a>
		<a href="/magazine/1995/06/17/some-article">an article, not an issue</a>
		<a href="/magazine">index, not an issue</a>
		<a href="/news/today">unrelated</a>
	</body></html>`

	ff := &fakeFetcher{bodies: map[string]string{
		base + "/magazine/1995": archive,
	}}
	s := New(ff, base, "/sitemap.xml", nil)

	issues, err := s.IssuesForYear(context.Background(), 1995)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, time.Date(1995, 6, 10, 0, 0, 0, 0, time.UTC), issues[0].IssueDate)
	assert.Equal(t, time.Date(1995, 6, 17, 0, 0, 0, 0, time.UTC), issues[1].IssueDate)
	assert.Equal(t, 1995, issues[0].Year)
	assert.Equal(t, base+"/magazine/1995/06/10", issues[0].URL)
}

func TestIssueArticleURLs(t *testing.T) {
	issuePage := `<html><body>
		<a href="/magazine/1995/06/10/a-reporter-at-large">Reporter</a>
		<a href="/magazine/1995/06/10/the-talk-of-the-town">Talk</a>
		<a href="/magazine/1995/06/10/the-talk-of-the-town">Talk again</a>
		<a href="/magazine/1995/06/10">the issue itself</a>
		<a href="/news/not-magazine">web piece</a>
	</body></html>`

	ff := &fakeFetcher{bodies: map[string]string{
		base + "/magazine/1995/06/10": issuePage,
	}}
	s := New(ff, base, "/sitemap.xml", nil)

	urls, err := s.IssueArticleURLs(context.Background(), base+"/magazine/1995/06/10")
	require.NoError(t, err)
	assert.Equal(t, []string{
		base + "/magazine/1995/06/10/a-reporter-at-large",
		base + "/magazine/1995/06/10/the-talk-of-the-town",
	}, urls)
}

func TestWebURLsInWindow(t *testing.T) {
	index := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>` + base + `/sitemap-1.xml</loc></sitemap>
  <sitemap><loc>` + base + `/sitemap-broken.xml</loc></sitemap>
</sitemapindex>`

	child := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>` + base + `/news/inside-window</loc><lastmod>1995-06-12</lastmod></url>
  <url><loc>` + base + `/news/window-edge</loc><lastmod>1995-06-13T23:59:00Z</lastmod></url>
  <url><loc>` + base + `/news/outside-window</loc><lastmod>1995-06-14</lastmod></url>
  <url><loc>` + base + `/magazine/1995/06/10/covered-elsewhere</loc><lastmod>1995-06-10</lastmod></url>
  <url><loc>https://other.example.net/news/foreign</loc><lastmod>1995-06-10</lastmod></url>
  <url><loc>` + base + `/news/no-lastmod</loc></url>
  <url><loc>` + base + `/news/inside-window</loc><lastmod>1995-06-12</lastmod></url>
</urlset>`

	ff := &fakeFetcher{bodies: map[string]string{
		base + "/sitemap.xml":   index,
		base + "/sitemap-1.xml": child,
		// sitemap-broken.xml has no canned body: the fetch fails and the
		// walk must continue past it.
	}}
	s := New(ff, base, "/sitemap.xml", nil)

	issue := corpus.Issue{
		Year:      1995,
		IssueDate: time.Date(1995, 6, 10, 0, 0, 0, 0, time.UTC),
	}
	got, err := s.WebURLsInWindow(context.Background(), issue, 3)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, base+"/news/inside-window", got[0].URL)
	assert.Equal(t, base+"/news/window-edge", got[1].URL)
}

func TestAbsURL(t *testing.T) {
	s := New(nil, base+"/", "/sitemap.xml", nil)
	assert.Equal(t, base+"/magazine/1995", s.absURL("/magazine/1995"))
	assert.Equal(t, "https://cdn.example.com/x", s.absURL("https://cdn.example.com/x"))
}
