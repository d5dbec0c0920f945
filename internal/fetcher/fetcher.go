// Package fetcher implements rate-limited, cache-backed retrieval with
// retry/backoff and an optional headless render fallback.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/periodical-labs/readlevel/internal/cache"
	"github.com/periodical-labs/readlevel/internal/cookies"
)

// DefaultResourceType is the cache partition used when a request does not
// name one.
const DefaultResourceType = "page"

// Renderer executes a page with JavaScript enabled and returns the DOM.
type Renderer interface {
	Render(ctx context.Context, rawURL string) ([]byte, error)
}

// Detector decides whether a static body is below the usable-text
// threshold and needs the render fallback.
type Detector interface {
	NeedsRender(body []byte) bool
}

// Config controls client behavior.
type Config struct {
	UserAgent       string
	Timeout         time.Duration
	MaxRetries      int
	BackoffInitial  time.Duration
	BackoffMax      time.Duration
	RequestInterval time.Duration
}

// Request captures everything needed to fetch one resource.
type Request struct {
	URL string
	// Type selects the cache partition; empty means DefaultResourceType.
	Type string
	Mode cache.RenderMode
	// DisableRender suppresses the headless fallback (e.g. for sitemaps).
	DisableRender bool
}

// Response is the result of a fetch.
type Response struct {
	URL       string
	Body      []byte
	FromCache bool
	Rendered  bool
}

// Client fetches resources through the cache store. A cache hit never
// touches the network, which is the resume mechanism for interrupted runs.
type Client struct {
	cfg           Config
	store         *cache.Store
	gate          *hostGate
	retry         *retryPolicy
	baseCollector *colly.Collector
	renderer      Renderer
	detector      Detector
	logger        *zap.Logger
}

// New builds a Client. The renderer and detector may be nil, in which
// case static bodies are always accepted as-is.
func New(
	cfg Config,
	store *cache.Store,
	renderer Renderer,
	detector Detector,
	creds []cookies.Record,
	logger *zap.Logger,
) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestInterval <= 0 {
		cfg.RequestInterval = time.Second
	}

	// colly v2.1.0's Async option ignores its argument and always enables
	// async mode; set the field directly to keep the collector synchronous.
	base := colly.NewCollector()
	base.Async = false
	// The Client dedups through its cache layer and retries the same URL
	// with backoff; colly's visited-URL guard (shared across Clone) would
	// turn every retry into ErrAlreadyVisited, so disable it.
	base.AllowURLRevisit = true
	if cfg.UserAgent != "" {
		base.UserAgent = cfg.UserAgent
	}
	base.IgnoreRobotsTxt = false
	base.SetRequestTimeout(cfg.Timeout)
	base.WithTransport(newHTTPTransport())
	applyCookies(base, creds, logger)

	return &Client{
		cfg:           cfg,
		store:         store,
		gate:          newHostGate(cfg.RequestInterval),
		retry:         newRetryPolicy(cfg.MaxRetries, cfg.BackoffInitial, cfg.BackoffMax),
		baseCollector: base,
		renderer:      renderer,
		detector:      detector,
		logger:        logger,
	}
}

// Fetch returns the body for req, from cache when possible. Transient
// failures are retried with backoff; exhausting attempts (or any 4xx
// other than 429) returns a *FetchError.
func (c *Client) Fetch(ctx context.Context, req Request) (Response, error) {
	resourceType := req.Type
	if resourceType == "" {
		resourceType = DefaultResourceType
	}
	key, err := cache.Key(req.URL, req.Mode)
	if err != nil {
		return Response{}, &FetchError{Kind: Permanent, URL: req.URL, Err: err}
	}

	if payload, _, ok := c.store.Get(resourceType, key); ok {
		totalCacheHits.Inc()
		return Response{URL: req.URL, Body: payload, FromCache: true}, nil
	}

	body, err := c.fetchWithRetry(ctx, req.URL)
	if err != nil {
		totalRequestErrors.Inc()
		return Response{}, err
	}

	rendered := false
	if !req.DisableRender && c.renderer != nil && c.detector != nil && c.detector.NeedsRender(body) {
		if upgraded, ok := c.renderFallback(ctx, req.URL); ok {
			body = upgraded
			rendered = true
		}
	}

	// The cache stores the best known rendering, not fetch history, so a
	// rendered body overwrites the static entry under the same key.
	if _, err := c.store.Put(resourceType, key, body); err != nil {
		return Response{}, fmt.Errorf("cache write for %s: %w", req.URL, err)
	}

	return Response{URL: req.URL, Body: body, Rendered: rendered}, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retry.maxAttempts; attempt++ {
		if attempt > 0 {
			totalRetries.Inc()
			if err := sleepCtx(ctx, c.retry.Backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		release, err := c.gate.Wait(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		status, body, netErr := c.doStatic(ctx, rawURL)
		release()
		totalRequests.Inc()

		fetchErr := classify(rawURL, status, netErr)
		if fetchErr == nil {
			return body, nil
		}
		lastErr = fetchErr
		if !c.retry.ShouldRetry(fetchErr, attempt+1) {
			return nil, fetchErr
		}
		c.logger.Warn("fetch attempt failed; retrying",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt+1),
			zap.Error(fetchErr),
		)
	}
	return nil, lastErr
}

func (c *Client) doStatic(ctx context.Context, rawURL string) (int, []byte, error) {
	collector := c.baseCollector.Clone()

	var (
		status   int
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return 0, nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil && fetchErr == nil {
			fetchErr = err
		}
		return status, body, fetchErr
	}
}

func (c *Client) renderFallback(ctx context.Context, rawURL string) ([]byte, bool) {
	release, err := c.gate.Wait(ctx, rawURL)
	if err != nil {
		return nil, false
	}
	rendered, rerr := c.renderer.Render(ctx, rawURL)
	release()
	if rerr != nil {
		c.logger.Warn("render fallback failed; keeping static body",
			zap.String("url", rawURL),
			zap.Error(rerr),
		)
		return nil, false
	}
	totalRenderPromotions.Inc()
	return rendered, true
}

// classify maps an HTTP outcome onto the fetch error taxonomy. A nil
// return means the response is usable.
func classify(rawURL string, status int, err error) *FetchError {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &FetchError{Kind: Transient, URL: rawURL, Status: status, Err: err}
		}
		var netErr net.Error
		if errors.As(err, &netErr) {
			return &FetchError{Kind: Transient, URL: rawURL, Status: status, Err: err}
		}
		if status == 0 {
			return &FetchError{Kind: Transient, URL: rawURL, Err: err}
		}
	}

	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return &FetchError{Kind: Transient, URL: rawURL, Status: status, Err: errors.New("rate limited")}
	case status >= 500:
		return &FetchError{Kind: Transient, URL: rawURL, Status: status, Err: errors.New("server error")}
	case status >= 400:
		return &FetchError{Kind: Permanent, URL: rawURL, Status: status, Err: errors.New("client error")}
	default:
		return &FetchError{Kind: Transient, URL: rawURL, Status: status, Err: fmt.Errorf("unexpected status %d", status)}
	}
}

func applyCookies(collector *colly.Collector, creds []cookies.Record, logger *zap.Logger) {
	byDomain := make(map[string][]*http.Cookie)
	for _, rec := range creds {
		domain := strings.TrimPrefix(rec.Domain, ".")
		if domain == "" {
			continue
		}
		byDomain[domain] = append(byDomain[domain], &http.Cookie{
			Name:   rec.Name,
			Value:  rec.Value,
			Domain: rec.Domain,
			Path:   rec.Path,
		})
	}
	for domain, cs := range byDomain {
		if err := collector.SetCookies("https://"+domain, cs); err != nil {
			logger.Warn("set cookies failed", zap.String("domain", domain), zap.Error(err))
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("backoff canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
