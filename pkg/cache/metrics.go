package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listings_meta_cache_hits_total",
		Help: "Total number of metadata cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listings_meta_cache_misses_total",
		Help: "Total number of metadata cache misses",
	})

	cacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listings_meta_cache_errors_total",
		Help: "Total number of metadata cache errors by operation",
	}, []string{"operation"})
)
