package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// totalRequests tracks the number of HTTP requests dispatched.
	totalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "readlevel_requests_total",
		Help: "The total number of HTTP requests sent.",
	})
	// totalCacheHits tracks fetches answered from the cache store.
	totalCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "readlevel_cache_hits_total",
		Help: "The total number of fetches served from the cache.",
	})
	// totalRequestErrors tracks requests that resulted in an error.
	totalRequestErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "readlevel_request_errors_total",
		Help: "The total number of failed HTTP requests.",
	})
	// totalRetries tracks retry attempts after transient failures.
	totalRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "readlevel_retries_total",
		Help: "The total number of fetch retries.",
	})
	// totalRenderPromotions tracks static fetches upgraded to headless renders.
	totalRenderPromotions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "readlevel_render_promotions_total",
		Help: "The total number of fetches promoted to the render fallback.",
	})
)
