// Package extract converts fetched HTML into normalized article text and
// metadata. It wraps go-readability; the rest of the pipeline consumes
// extracted text and never sees markup.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// ErrUnparseable marks an article whose content could not be extracted.
// The pipeline records it with a reason and moves on.
var ErrUnparseable = errors.New("unparseable article")

// Extraction is normalized article content plus surface metadata.
type Extraction struct {
	Title     string
	Author    string
	Section   string
	Published time.Time
	Text      string
}

// FromHTML extracts article text and metadata from a fetched page.
func FromHTML(html []byte, rawURL string) (Extraction, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: bad url %q: %v", ErrUnparseable, rawURL, err)
	}

	article, err := readability.FromReader(bytes.NewReader(html), pageURL)
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	out := Extraction{
		Title:  strings.TrimSpace(article.Title),
		Author: strings.TrimSpace(article.Byline),
		Text:   normalizeText(article.TextContent),
	}
	if out.Text == "" {
		return Extraction{}, fmt.Errorf("%w: no text content", ErrUnparseable)
	}

	fillMeta(&out, html)
	return out, nil
}

// fillMeta augments the extraction with Open Graph / article meta tags.
// Failures here are non-fatal; the readability fields stand.
func fillMeta(out *Extraction, html []byte) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return
	}
	if title, ok := metaContent(doc, `meta[property="og:title"]`); ok {
		out.Title = title
	}
	if out.Author == "" {
		if author, ok := metaContent(doc, `meta[name="author"]`); ok {
			out.Author = author
		}
	}
	if section, ok := metaContent(doc, `meta[property="article:section"]`); ok {
		out.Section = section
	}
	if published, ok := metaContent(doc, `meta[property="article:published_time"]`); ok {
		out.Published = parseDate(published)
	}
}

func metaContent(doc *goquery.Document, selector string) (string, bool) {
	content, exists := doc.Find(selector).First().Attr("content")
	content = strings.TrimSpace(content)
	return content, exists && content != ""
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	var paras []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			paras = append(paras, line)
		}
	}
	return strings.Join(paras, "\n\n")
}
