// Package metrics provides the centralized Prometheus metrics reference
// for the listings service. All metrics are defined in their respective
// packages (enrich, objcache, cache, crossref, ratelimit, refresh,
// sheetimage, source) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Page Metrics (pkg/enrich):
//   - listings_page_requests_total{outcome} (Counter): Listing page requests by outcome
//   - listings_page_request_duration_seconds (Histogram): Page assembly duration
//
// Object Cache Metrics (pkg/objcache):
//   - listings_object_cache_hits_total{cache} (Counter): Fresh-value hits by cache name
//   - listings_object_cache_misses_total{cache} (Counter): Misses and expiries by cache name
//   - listings_object_cache_load_errors_total{cache} (Counter): Failed loads by cache name
//   - listings_object_cache_load_duration_seconds{cache} (Histogram): Load duration
//
// Metadata Cache Metrics (pkg/cache):
//   - listings_meta_cache_hits_total (Counter): Metadata document cache hits
//   - listings_meta_cache_misses_total (Counter): Metadata document cache misses
//   - listings_meta_cache_errors_total{operation} (Counter): Cache operation errors
//
// Provider Metrics (pkg/crossref):
//   - listings_crossref_requests_total{status} (Counter): Requests by HTTP status
//   - listings_crossref_request_duration_seconds (Histogram): Request duration
//   - listings_crossref_errors_total{class} (Counter): Errors by class
//     (client, server, rate_limit, network)
//   - listings_crossref_retries_total{error_class} (Counter): Retry attempts
//   - listings_crossref_retry_backoff_seconds{error_class} (Histogram): Backoff duration
//   - listings_crossref_retry_exhausted_total{error_class} (Counter): Exhausted retries
//
// Rate Limit Metrics (pkg/ratelimit):
//   - listings_crossref_rate_limit (Gauge): Advertised requests per second
//   - listings_crossref_rate_limit_updates_total (Counter): Header-driven updates
//
// Refresh Metrics (pkg/refresh):
//   - listings_refresh_runs_total{task, outcome} (Counter): Background task runs
//   - listings_refresh_duration_seconds{task} (Histogram): Task duration
//
// Image Provider Metrics (pkg/sheetimage):
//   - listings_image_mapping_size (Gauge): Entries in the current DOI to image mapping
//
// Source Metrics (pkg/source):
//   - listings_source_pages_fetched_total{source} (Counter): Upstream pages fetched
//
// Example Prometheus Queries:
//
//   # Metadata Cache Hit Rate
//   sum(rate(listings_meta_cache_hits_total[5m])) /
//   (sum(rate(listings_meta_cache_hits_total[5m])) + sum(rate(listings_meta_cache_misses_total[5m])))
//
//   # Page Error Rate
//   rate(listings_page_requests_total{outcome="error"}[5m])
//
//   # P95 Page Assembly Latency
//   histogram_quantile(0.95, rate(listings_page_request_duration_seconds_bucket[5m]))
//
//   # Refresh Failures
//   rate(listings_refresh_runs_total{outcome="failure"}[5m])
