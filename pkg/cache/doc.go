// Package cache provides the Redis-backed per-DOI metadata response cache.
//
// The cache sits between the metadata enrichment stage and the remote
// metadata provider: a repeat page view resolves its metadata from Redis
// instead of the network. Entries carry their own expiry and are also
// evicted by Redis TTL, so the provider is re-consulted once the configured
// max age passes. Redis is shared state: multiple serving instances reuse
// each other's lookups.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//	manager := cache.NewManager(redisClient)
//
//	entry, err := manager.Get(ctx, cache.Key{Provider: "crossref", DOI: doi})
//	if err == cache.ErrCacheMiss {
//		// fetch from provider, then:
//		manager.Set(ctx, key, cache.NewEntry(meta, maxAge))
//	}
//
// Batched lookups use GetMany/SetMany, which map onto MGET and a pipeline
// so one page costs one round trip.
package cache
