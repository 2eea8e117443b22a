package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	crossrefRateLimit = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "listings_crossref_rate_limit",
		Help: "Requests per second currently advertised by Crossref",
	})

	crossrefRateUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listings_crossref_rate_limit_updates_total",
		Help: "Total number of rate limit updates observed from response headers",
	})
)

// Tracker observes Crossref rate limit headers and shares the state via Redis.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a new rate limit tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the current rate limit state from Redis.
// Returns the default conservative state if no data exists in Redis.
func (t *Tracker) GetState(ctx context.Context) (*RateLimitState, error) {
	limit, err := t.redis.Get(ctx, RedisKeyLimit).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get rate limit: %w", err)
	}

	intervalSeconds, err := t.redis.Get(ctx, RedisKeyIntervalSeconds).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get rate limit interval: %w", err)
	}

	lastUpdateStr, err := t.redis.Get(ctx, RedisKeyLastUpdate).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last update: %w", err)
	}

	// If no state exists in Redis, return the conservative default
	if err == redis.Nil {
		t.logger.Debug().Msg("No rate limit state in Redis, returning default state")
		return &RateLimitState{
			Limit:      DefaultLimit,
			Interval:   DefaultInterval,
			LastUpdate: time.Now(),
		}, nil
	}

	var lastUpdate time.Time
	if lastUpdateStr != "" {
		if err := json.Unmarshal([]byte(lastUpdateStr), &lastUpdate); err != nil {
			return nil, fmt.Errorf("parse last update: %w", err)
		}
	}

	return &RateLimitState{
		Limit:      limit,
		Interval:   time.Duration(intervalSeconds) * time.Second,
		LastUpdate: lastUpdate,
	}, nil
}

// UpdateFromHeaders parses Crossref rate limit headers and updates Redis state.
// Responses without rate limit headers are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	limitStr := headers.Get("X-Rate-Limit-Limit")
	if limitStr == "" {
		// Header not present - fine for error responses and some endpoints
		return nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return fmt.Errorf("parse X-Rate-Limit-Limit header: %w", err)
	}

	intervalStr := headers.Get("X-Rate-Limit-Interval")
	if intervalStr == "" {
		return fmt.Errorf("X-Rate-Limit-Interval header missing")
	}

	interval, err := parseInterval(intervalStr)
	if err != nil {
		return fmt.Errorf("parse X-Rate-Limit-Interval header: %w", err)
	}

	now := time.Now()
	state := &RateLimitState{
		Limit:      limit,
		Interval:   interval,
		LastUpdate: now,
	}

	// Store in Redis atomically
	pipe := t.redis.Pipeline()
	pipe.Set(ctx, RedisKeyLimit, limit, 0)
	pipe.Set(ctx, RedisKeyIntervalSeconds, int(interval.Seconds()), 0)

	lastUpdateJSON, err := json.Marshal(state.LastUpdate)
	if err != nil {
		return fmt.Errorf("marshal last update: %w", err)
	}
	pipe.Set(ctx, RedisKeyLastUpdate, lastUpdateJSON, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}

	crossrefRateLimit.Set(state.RequestsPerSecond())
	crossrefRateUpdatesTotal.Inc()

	t.logger.Debug().
		Int("limit", limit).
		Dur("interval", interval).
		Float64("requests_per_second", state.RequestsPerSecond()).
		Msg("Crossref rate limit state updated")

	return nil
}

// parseInterval parses the X-Rate-Limit-Interval value. Crossref sends
// values like "1s"; bare integers are treated as seconds.
func parseInterval(value string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	interval, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if interval <= 0 {
		return 0, fmt.Errorf("non-positive interval %q", value)
	}
	return interval, nil
}
