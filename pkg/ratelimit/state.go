// Package ratelimit implements Crossref request rate tracking and pacing.
// It monitors the X-Rate-Limit-Limit and X-Rate-Limit-Interval headers
// advertised by the Crossref API and shares the observed limits across
// all client instances via Redis, so concurrent workers stay inside the
// polite-pool budget.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyLimit           = "crossref:rate_limit:limit"
	RedisKeyIntervalSeconds = "crossref:rate_limit:interval_seconds"
	RedisKeyLastUpdate      = "crossref:rate_limit:last_update"
)

// Defaults applied before any headers have been observed.
// Crossref advertises 50 requests per second for the polite pool; we
// start well below that and let the headers raise the ceiling.
const (
	DefaultLimit    = 10
	DefaultInterval = 1 * time.Second
)

// RateLimitState represents the most recently advertised Crossref rate
// limit. This state is shared across all client instances via Redis.
type RateLimitState struct {
	// Limit is the number of requests allowed per interval.
	// Extracted from the X-Rate-Limit-Limit header.
	Limit int `json:"limit"`

	// Interval is the window the limit applies to.
	// Extracted from the X-Rate-Limit-Interval header (e.g. "1s").
	Interval time.Duration `json:"interval"`

	// LastUpdate is the timestamp when this state was last updated.
	// Used to detect stale state and determine if data should be refreshed.
	LastUpdate time.Time `json:"last_update"`
}

// IsStale returns true if the state data is older than the given duration.
// Stale state should be refreshed from Redis or response headers.
func (s *RateLimitState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// RequestsPerSecond converts the advertised limit into a per-second rate
// suitable for seeding a token bucket limiter.
func (s *RateLimitState) RequestsPerSecond() float64 {
	if s.Limit <= 0 || s.Interval <= 0 {
		return float64(DefaultLimit) / DefaultInterval.Seconds()
	}
	return float64(s.Limit) / s.Interval.Seconds()
}
