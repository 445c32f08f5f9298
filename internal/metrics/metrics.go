// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service metrics
type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	recipeWrites  *prometheus.CounterVec
	shoppingLists *prometheus.CounterVec
	revokedPurged prometheus.Counter
	rateLimitHits prometheus.Counter
}

// NewCollector creates a Collector and registers it with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		recipeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Successful recipe writes by operation",
		}, []string{"operation"}),
		shoppingLists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Shopping list downloads by format",
		}, []string{"format"}),
		revokedPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodgram_revoked_tokens_purged_total",
			Help: "Expired revoked tokens removed by the purge job",
		}),
		rateLimitHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodgram_rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.recipeWrites,
		c.shoppingLists,
		c.revokedPurged,
		c.rateLimitHits,
	)

	return c
}

// RecordRequest records one served HTTP request. route is the matched route
// pattern, not the raw path.
func (c *Collector) RecordRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecipeWrite records a successful create, update or delete
func (c *Collector) RecordRecipeWrite(operation string) {
	c.recipeWrites.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordShoppingListDownload(format string) {
	c.shoppingLists.WithLabelValues(format).Inc()
}

func (c *Collector) RecordRevokedTokensPurged(count int64) {
	c.revokedPurged.Add(float64(count))
}

func (c *Collector) RecordRateLimited() {
	c.rateLimitHits.Inc()
}

// Handler returns the HTTP handler Prometheus scrapes
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
