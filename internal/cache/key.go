package cache

import (
	"fmt"
	"net/url"
	"strings"
)

// RenderMode distinguishes how a resource was requested.
type RenderMode string

// Render modes recorded in cache keys.
const (
	ModeStatic   RenderMode = "static"
	ModeRendered RenderMode = "rendered"
)

// trackingParams are stripped during normalization so equivalent URLs
// share a single cache entry.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"fbclid":       {},
	"gclid":        {},
	"mc_cid":       {},
	"mc_eid":       {},
}

// NormalizeURL standardizes a URL to avoid duplicate cache entries.
// It lowercases the scheme and host, removes default ports and fragments,
// strips tracking query parameters, and sorts the remaining ones.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.Scheme == "http" && strings.HasSuffix(u.Host, ":80") {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" && strings.HasSuffix(u.Host, ":443") {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""

	q := u.Query()
	for name := range q {
		if _, tracked := trackingParams[strings.ToLower(name)]; tracked {
			q.Del(name)
		}
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Key builds the normalized cache key for a request. The key is the
// normalized URL plus the requested render mode, so a static request and
// an explicitly rendered request occupy distinct slots while a render
// fallback (an upgrade of the same static request) overwrites in place.
func Key(rawURL string, mode RenderMode) (string, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}
	if mode == "" {
		mode = ModeStatic
	}
	return normalized + "#" + string(mode), nil
}
