package crossref

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for Crossref client operations.
var (
	crossrefRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listings_crossref_requests_total",
		Help: "Total Crossref requests by status",
	}, []string{"status"})

	crossrefRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "listings_crossref_request_duration_seconds",
		Help:    "Crossref request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	crossrefErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listings_crossref_errors_total",
		Help: "Total Crossref errors by class",
	}, []string{"class"})

	crossrefRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listings_crossref_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	crossrefRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "listings_crossref_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	crossrefRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listings_crossref_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)
