package objcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listings_object_cache_hits_total",
			Help: "Total number of single-object cache hits",
		},
		[]string{"cache"},
	)

	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listings_object_cache_misses_total",
			Help: "Total number of single-object cache misses (cold or expired)",
		},
		[]string{"cache"},
	)

	cacheLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listings_object_cache_load_errors_total",
			Help: "Total number of failed single-object cache loads",
		},
		[]string{"cache"},
	)

	cacheLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listings_object_cache_load_duration_seconds",
			Help:    "Duration of single-object cache loads in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"cache"},
	)
)
