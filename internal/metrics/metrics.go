// Package metrics exposes Prometheus collectors for the discovery service.
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

var (
	fetchesTotal               *prometheus.CounterVec
	fetchBytesTotal            *prometheus.CounterVec
	extractionsTotal           *prometheus.CounterVec
	completionsTotal           *prometheus.CounterVec
	restaurantsProcessedTotal  *prometheus.CounterVec
	discoveryJobsTotal         *prometheus.CounterVec
	activeWorkers              prometheus.Gauge
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menu_fetches_total",
				Help: "Total page fetch attempts, labeled by tier and outcome.",
			},
			[]string{"tier", "outcome"},
		)

		fetchBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menu_fetch_bytes_total",
				Help: "Total bytes of markup fetched, labeled by site.",
			},
			[]string{"site"},
		)

		extractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menu_extractions_total",
				Help: "Total extractor runs, labeled by pass that produced output.",
			},
			[]string{"pass"},
		)

		completionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menu_completions_total",
				Help: "Total generative-provider calls, labeled by contract and outcome.",
			},
			[]string{"contract", "outcome"},
		)

		restaurantsProcessedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menu_restaurants_processed_total",
				Help: "Total restaurants processed, labeled by terminal menu source.",
			},
			[]string{"source"},
		)

		discoveryJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menu_discovery_jobs_total",
				Help: "Total discovery jobs, labeled by final status.",
			},
			[]string{"status"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "menu_active_workers",
				Help: "Number of workers currently processing a discovery job.",
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

// SanitizeSite extracts a lowercase hostname from a URL, or "unknown".
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

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records a page fetch attempt for a tier.
func ObserveFetch(tier, site string, ok bool, bytesFetched int) {
	if fetchesTotal == nil {
		return
	}
	fetchesTotal.WithLabelValues(tier, outcome(ok)).Inc()
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(SanitizeSite(site)).Add(float64(bytesFetched))
	}
}

// ObserveExtraction records which extractor pass produced output
// ("keyword", "price", or "none").
func ObserveExtraction(pass string) {
	if extractionsTotal == nil {
		return
	}
	extractionsTotal.WithLabelValues(pass).Inc()
}

// ObserveCompletion records a generative-provider call for a contract.
func ObserveCompletion(contract string, ok bool) {
	if completionsTotal == nil {
		return
	}
	completionsTotal.WithLabelValues(contract, outcome(ok)).Inc()
}

// ObserveRestaurant records the terminal menu source for one restaurant
// ("chain", "website", or "synthesized").
func ObserveRestaurant(source string) {
	if restaurantsProcessedTotal == nil {
		return
	}
	restaurantsProcessedTotal.WithLabelValues(source).Inc()
}

// ObserveJob increments the discovery-job counter for the given status.
func ObserveJob(status string) {
	if discoveryJobsTotal == nil {
		return
	}
	discoveryJobsTotal.WithLabelValues(status).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	if activeWorkers != nil {
		activeWorkers.Inc()
	}
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	if activeWorkers != nil {
		activeWorkers.Dec()
	}
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
