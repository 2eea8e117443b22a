// Package crossref implements the Crossref metadata provider. It resolves
// article metadata in batches via the /works endpoint, paces requests
// against the limits Crossref advertises in its rate limit headers, and
// keeps resolved documents in a Redis-backed cache so repeat page views
// skip the network.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/preprintlabs/listings/pkg/article"
	"github.com/preprintlabs/listings/pkg/cache"
	"github.com/preprintlabs/listings/pkg/ratelimit"
)

// ProviderName identifies this provider in cache keys and errors.
const ProviderName = "crossref"

// DefaultBaseURL is the public Crossref API.
const DefaultBaseURL = "https://api.crossref.org"

// Config holds the client configuration.
type Config struct {
	// BaseURL of the Crossref API. Defaults to DefaultBaseURL.
	BaseURL string

	// User-Agent header. Include a mailto: contact to join the
	// Crossref polite pool, e.g. "listings/1.0 (mailto:ops@example.org)".
	UserAgent string

	// Redis client for the metadata document cache and shared rate
	// limit state. Optional; without it every lookup hits the network
	// and pacing falls back to the conservative default.
	Redis *redis.Client

	// CacheMaxAge is how long resolved metadata stays cached.
	CacheMaxAge time.Duration

	// Timeout for a single HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(redisClient *redis.Client, userAgent string) Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		UserAgent:   userAgent,
		Redis:       redisClient,
		CacheMaxAge: 24 * time.Hour,
		Timeout:     30 * time.Second,
	}
}

// Client is the Crossref metadata client. It implements the metadata
// provider contract used by the enrichment stages.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	limiter     *rate.Limiter
	tracker     *ratelimit.Tracker
	cache       *cache.Manager
	cacheMaxAge time.Duration
	logger      zerolog.Logger
}

// New creates a new Crossref client.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cacheMaxAge := cfg.CacheMaxAge
	if cacheMaxAge <= 0 {
		cacheMaxAge = 24 * time.Hour
	}

	logger = logger.With().Str("component", "crossref-client").Logger()

	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: cfg.UserAgent,
		limiter: rate.NewLimiter(
			rate.Limit(float64(ratelimit.DefaultLimit)/ratelimit.DefaultInterval.Seconds()),
			ratelimit.DefaultLimit,
		),
		cacheMaxAge: cacheMaxAge,
		logger:      logger,
	}

	if cfg.Redis != nil {
		c.tracker = ratelimit.NewTracker(cfg.Redis, logger)
		c.cache = cache.NewManager(cfg.Redis)
	}

	return c, nil
}

// LookupMany resolves metadata for the given DOIs in a single batched
// request. The result is keyed by the requested DOI strings; DOIs the
// provider does not know are simply absent.
func (c *Client) LookupMany(ctx context.Context, dois []string) (map[string]article.Metadata, error) {
	result := make(map[string]article.Metadata, len(dois))
	if len(dois) == 0 {
		return result, nil
	}

	missing := dois
	if c.cache != nil {
		keys := make([]cache.Key, len(dois))
		for i, doi := range dois {
			keys[i] = cache.Key{Provider: ProviderName, DOI: doi}
		}
		entries, err := c.cache.GetMany(ctx, keys)
		if err != nil {
			// Degrade to a full network lookup
			c.logger.Warn().Err(err).Msg("Metadata cache lookup failed")
		} else {
			missing = make([]string, 0, len(dois))
			for _, doi := range dois {
				if entry, ok := entries[doi]; ok {
					result[doi] = entry.Meta
				} else {
					missing = append(missing, doi)
				}
			}
		}
	}

	if len(missing) == 0 {
		return result, nil
	}

	c.refreshLimiter(ctx)

	fetched, err := c.fetchBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for doi, meta := range fetched {
		result[doi] = meta
	}

	if c.cache != nil && len(fetched) > 0 {
		entries := make(map[cache.Key]*cache.Entry, len(fetched))
		for doi, meta := range fetched {
			key := cache.Key{Provider: ProviderName, DOI: doi}
			entries[key] = cache.NewEntry(meta, c.cacheMaxAge)
		}
		if err := c.cache.SetMany(ctx, entries); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache metadata")
		}
	}

	return result, nil
}

// refreshLimiter retunes the local token bucket from the shared rate
// limit state observed in response headers.
func (c *Client) refreshLimiter(ctx context.Context) {
	if c.tracker == nil {
		return
	}
	state, err := c.tracker.GetState(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Failed to read rate limit state")
		return
	}
	c.limiter.SetLimit(rate.Limit(state.RequestsPerSecond()))
	if state.Limit > 0 {
		c.limiter.SetBurst(state.Limit)
	}
}

// fetchBatch queries /works for the given DOIs and returns metadata
// keyed by the requested DOI strings. Matching against the response is
// case-insensitive; DOIs are case-insensitive identifiers but Crossref
// echoes its own casing.
func (c *Client) fetchBatch(ctx context.Context, dois []string) (map[string]article.Metadata, error) {
	filters := make([]string, len(dois))
	for i, doi := range dois {
		filters[i] = "doi:" + doi
	}
	query := url.Values{}
	query.Set("filter", strings.Join(filters, ","))
	query.Set("rows", strconv.Itoa(len(dois)))
	requestURL := c.baseURL + "/works?" + query.Encode()

	var parsed worksResponse

	err := retryWithBackoff(ctx, c.logger, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrContextCancelled, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		startTime := time.Now()
		resp, err := c.httpClient.Do(req)
		crossrefRequestDuration.Observe(time.Since(startTime).Seconds())

		if err != nil {
			c.logger.Warn().Err(err).Msg("Crossref request failed")
			crossrefErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			crossrefRequestsTotal.WithLabelValues("network_error").Inc()
			return err
		}
		defer resp.Body.Close()

		if c.tracker != nil {
			if err := c.tracker.UpdateFromHeaders(ctx, resp.Header); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
			}
		}

		crossrefRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode != http.StatusOK {
			errClass := classifyStatus(resp.StatusCode)
			crossrefErrorsTotal.WithLabelValues(string(errClass)).Inc()
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Int("doi_count", len(dois)).
				Msg("Crossref request error")
			return &ProviderError{
				Provider:   ProviderName,
				StatusCode: resp.StatusCode,
				Class:      errClass,
				Message:    resp.Status,
			}
		}

		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			crossrefErrorsTotal.WithLabelValues(string(ErrorClassServer)).Inc()
			return &ProviderError{
				Provider:   ProviderName,
				StatusCode: resp.StatusCode,
				Class:      ErrorClassServer,
				Message:    "decode response",
				Err:        err,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	workByDOI := make(map[string]workItem, len(parsed.Message.Items))
	for _, item := range parsed.Message.Items {
		workByDOI[strings.ToLower(item.DOI)] = item
	}

	metadata := make(map[string]article.Metadata, len(dois))
	for _, doi := range dois {
		work, ok := workByDOI[strings.ToLower(doi)]
		if !ok {
			continue
		}
		metadata[doi] = metadataFromWork(doi, work)
	}

	c.logger.Debug().
		Int("requested", len(dois)).
		Int("resolved", len(metadata)).
		Msg("Crossref batch lookup complete")

	return metadata, nil
}
