// Package metrics exposes Prometheus instrumentation for the analyze path.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	analyzeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardianeye_analyze_total",
			Help: "Analyze requests by verdict status and detection method.",
		},
		[]string{"status", "method"},
	)
	analyzeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardianeye_analyze_errors_total",
			Help: "Analyze requests that returned an error, by kind.",
		},
		[]string{"kind"},
	)
	sourceUnavailable = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardianeye_source_unavailable_total",
			Help: "Signal sources that were unavailable for a request.",
		},
		[]string{"source"},
	)
	analyzeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "guardianeye_analyze_duration_seconds",
			Help:    "End-to-end analyze latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(analyzeTotal, analyzeErrors, sourceUnavailable, analyzeDuration)
}

// RecordVerdict counts one fused verdict.
func RecordVerdict(status, method string) {
	analyzeTotal.WithLabelValues(status, method).Inc()
}

// RecordError counts one failed analyze request.
func RecordError(kind string) {
	analyzeErrors.WithLabelValues(kind).Inc()
}

// RecordUnavailable counts one unavailable signal source.
func RecordUnavailable(source string) {
	sourceUnavailable.WithLabelValues(source).Inc()
}

// ObserveDuration records one request's latency in seconds.
func ObserveDuration(seconds float64) {
	analyzeDuration.Observe(seconds)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
