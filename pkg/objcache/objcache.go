// Package objcache provides a TTL-bound cache for a single expensive-to-load
// value, such as a bulk event log or a spreadsheet mapping. Concurrent
// callers hitting a cold or expired cache are collapsed into one load via
// singleflight: exactly one invocation of the load function runs at a time
// and every waiting caller receives its result or its failure.
//
// Miss policy: callers block until the in-flight load completes. A stale
// value is never served while a refresh is running; pair the cache with a
// background refresh task to keep request paths off the cold-load latency.
package objcache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc loads a fresh value. It is invoked at most once per in-flight
// load per cache instance.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// SingleObjectCache caches zero or one value of type T.
type SingleObjectCache[T any] interface {
	// GetOrLoad returns the cached value if it is younger than the max
	// age, otherwise loads a fresh one. On load failure the previous
	// value (if any) is retained and the error is returned to every
	// caller attached to that load.
	GetOrLoad(ctx context.Context, loadFn LoadFunc[T]) (T, error)

	// Reload forces a fresh load regardless of age, still collapsing
	// concurrent reloads into one invocation.
	Reload(ctx context.Context, loadFn LoadFunc[T]) (T, error)

	// Clear drops the cached value.
	Clear()
}

// Dummy never caches: every GetOrLoad invokes the load function. Used to
// disable caching, e.g. in tests.
type Dummy[T any] struct{}

// GetOrLoad implements SingleObjectCache.
func (Dummy[T]) GetOrLoad(ctx context.Context, loadFn LoadFunc[T]) (T, error) {
	return loadFn(ctx)
}

// Reload implements SingleObjectCache.
func (Dummy[T]) Reload(ctx context.Context, loadFn LoadFunc[T]) (T, error) {
	return loadFn(ctx)
}

// Clear implements SingleObjectCache.
func (Dummy[T]) Clear() {}

// InMemory is the in-process SingleObjectCache implementation.
type InMemory[T any] struct {
	name   string
	maxAge time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	value    T
	hasValue bool
	loadedAt time.Time

	group singleflight.Group
}

// NewInMemory creates an in-memory cache. The name labels the cache in
// metrics. maxAge <= 0 means the value never expires (it can still be
// replaced via Reload).
func NewInMemory[T any](name string, maxAge time.Duration) *InMemory[T] {
	return &InMemory[T]{
		name:   name,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// GetOrLoad implements SingleObjectCache.
func (c *InMemory[T]) GetOrLoad(ctx context.Context, loadFn LoadFunc[T]) (T, error) {
	if value, ok := c.freshValue(); ok {
		cacheHits.WithLabelValues(c.name).Inc()
		return value, nil
	}
	cacheMisses.WithLabelValues(c.name).Inc()
	return c.load(ctx, loadFn, false)
}

// Reload implements SingleObjectCache.
func (c *InMemory[T]) Reload(ctx context.Context, loadFn LoadFunc[T]) (T, error) {
	return c.load(ctx, loadFn, true)
}

// Clear implements SingleObjectCache.
func (c *InMemory[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.hasValue = false
	c.loadedAt = time.Time{}
}

func (c *InMemory[T]) freshValue() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasValue {
		var zero T
		return zero, false
	}
	if c.maxAge > 0 && c.now().Sub(c.loadedAt) > c.maxAge {
		var zero T
		return zero, false
	}
	return c.value, true
}

// load runs loadFn under singleflight. The load runs with the context of
// the caller that triggered it; callers joining an in-flight load share
// that load's outcome, including cancellation.
func (c *InMemory[T]) load(ctx context.Context, loadFn LoadFunc[T], force bool) (T, error) {
	result, err, _ := c.group.Do("load", func() (interface{}, error) {
		// A caller queued behind a completed load may find the value
		// fresh already; skip the expensive load in that case.
		if !force {
			if value, ok := c.freshValue(); ok {
				return value, nil
			}
		}
		start := time.Now()
		value, err := loadFn(ctx)
		cacheLoadDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
		if err != nil {
			cacheLoadErrors.WithLabelValues(c.name).Inc()
			return nil, err
		}
		c.mu.Lock()
		c.value = value
		c.hasValue = true
		c.loadedAt = c.now()
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}
