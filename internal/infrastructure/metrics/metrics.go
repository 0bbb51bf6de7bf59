// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fxconv",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Requests sent to the exchange rate API by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fxconv",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of exchange rate API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8), // 50ms to ~6s
		},
		[]string{"endpoint"},
	)

	snapshots = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fxconv",
			Subsystem: "rates",
			Name:      "snapshots_total",
			Help:      "Rate tables handed out by provenance and reason.",
		},
		[]string{"provenance", "reason"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fxconv",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fxconv",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(upstreamRequests, upstreamDuration, snapshots, httpRequests, httpDuration)
}

// ObserveUpstream records one upstream API call
func ObserveUpstream(endpoint, outcome string, d time.Duration) {
	upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveSnapshot records the provenance of a rate table handed to a caller
func ObserveSnapshot(provenance, reason string) {
	snapshots.WithLabelValues(provenance, reason).Inc()
}

// ObserveHTTP records one handled HTTP request
func ObserveHTTP(method, route string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RouteTemplate returns the mux route template of r, or its path when unmatched
func RouteTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// Handler exposes the registry for scraping
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
