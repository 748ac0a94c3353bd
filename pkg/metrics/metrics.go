// Package metrics holds the Prometheus collectors for the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests by route, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfront_http_requests_total",
		Help: "Total HTTP requests handled.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogfront_http_request_duration_seconds",
		Help:    "HTTP request duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// CMSFetches counts upstream content API calls by operation and outcome.
	CMSFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfront_cms_fetch_total",
		Help: "Total CMS API fetches.",
	}, []string{"operation", "outcome"})

	// CacheEvents counts page cache lookups by result (hit, miss, bypass).
	CacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfront_page_cache_events_total",
		Help: "Rendered page cache lookup results.",
	}, []string{"result"})

	// TagInvalidations counts webhook-driven cache tag invalidations.
	TagInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfront_cache_tag_invalidations_total",
		Help: "Cache tag invalidations triggered by the revalidate webhook.",
	}, []string{"tag_class"})
)

// Middleware records request count and duration per route. Uses the gin
// route pattern, not the raw path, to keep label cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry, mounted at /metrics.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
