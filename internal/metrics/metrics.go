// Package metrics exposes Prometheus collectors for the crawler, the storage
// engine, and the presentation server.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Crawl outcome labels recorded by ObserveCrawl.
const (
	StatusIndexed     = "indexed"
	StatusFetchFailed = "fetch_failed"
	StatusRobotsDeny  = "robots_denied"
	StatusFiltered    = "filtered"
)

var (
	crawlerPagesTotal          *prometheus.CounterVec
	crawlerBytesTotal          *prometheus.CounterVec
	crawlerFrontierSize        prometheus.Gauge
	crawlerRobotsFetchesTotal  *prometheus.CounterVec
	crawlerSinkErrorsTotal     *prometheus.CounterVec
	storeOperationsTotal       *prometheus.CounterVec
	searchResultsCount         prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		crawlerPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_pages_total",
				Help: "Total number of URLs popped from the frontier, labeled by site and outcome.",
			},
			[]string{"site", "status"},
		)

		crawlerBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_bytes_total",
				Help: "Total number of HTML bytes fetched, labeled by site.",
			},
			[]string{"site"},
		)

		crawlerFrontierSize = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_frontier_size",
				Help: "Number of URLs waiting in the frontier of the running crawl.",
			},
		)

		crawlerRobotsFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_robots_fetches_total",
				Help: "robots.txt lookups that missed the cache, labeled by result.",
			},
			[]string{"result"},
		)

		crawlerSinkErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_sink_errors_total",
				Help: "Document sink failures, labeled by sink.",
			},
			[]string{"sink"},
		)

		storeOperationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_operations_total",
				Help: "Storage engine operations, labeled by operation and result.",
			},
			[]string{"op", "result"},
		)

		searchResultsCount = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Histogram of rows returned per search.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite extracts a lowercase hostname from a URL.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCrawl records the outcome of one frontier URL.
func ObserveCrawl(site string, status string, bytesFetched int) {
	sanitizedSite := SanitizeSite(site)
	crawlerPagesTotal.WithLabelValues(sanitizedSite, status).Inc()
	if bytesFetched > 0 {
		crawlerBytesTotal.WithLabelValues(sanitizedSite).Add(float64(bytesFetched))
	}
}

// SetFrontierSize publishes the current queue length.
func SetFrontierSize(n int) {
	crawlerFrontierSize.Set(float64(n))
}

// ObserveRobotsFetch counts a robots.txt cache miss. found is false when the
// fetch failed and the host was recorded as permissive.
func ObserveRobotsFetch(found bool) {
	result := "found"
	if !found {
		result = "missing"
	}
	crawlerRobotsFetchesTotal.WithLabelValues(result).Inc()
}

// ObserveSinkError counts a failed document sink delivery.
func ObserveSinkError(sink string) {
	crawlerSinkErrorsTotal.WithLabelValues(sink).Inc()
}

// ObserveStoreOp counts a storage engine operation. err == nil is recorded as "ok".
func ObserveStoreOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOperationsTotal.WithLabelValues(op, result).Inc()
}

// ObserveSearch records how many rows a search returned.
func ObserveSearch(results int) {
	searchResultsCount.Observe(float64(results))
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
