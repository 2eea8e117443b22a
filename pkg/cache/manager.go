package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Manager handles metadata caching operations with Redis backend.
type Manager struct {
	redis *redis.Client
}

// NewManager creates a new cache manager with Redis backend.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis: redisClient,
	}
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or the entry has expired.
func (m *Manager) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := m.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			cacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	entry, err := m.decodeEntry(data)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		_ = m.Delete(ctx, key)
		cacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	cacheHits.Inc()
	return entry, nil
}

// GetMany retrieves entries for multiple keys in one MGET round trip.
// The result maps each key's DOI to its entry; missing or expired keys are
// simply absent. A Redis transport failure fails the whole lookup.
func (m *Manager) GetMany(ctx context.Context, keys []Key) (map[string]*Entry, error) {
	if len(keys) == 0 {
		return map[string]*Entry{}, nil
	}

	keyStrings := make([]string, len(keys))
	for i, key := range keys {
		keyStrings[i] = key.String()
	}

	values, err := m.redis.MGet(ctx, keyStrings...).Result()
	if err != nil {
		cacheErrors.WithLabelValues("mget").Inc()
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	entries := make(map[string]*Entry, len(keys))
	for i, value := range values {
		if value == nil {
			cacheMisses.Inc()
			continue
		}
		data, ok := value.(string)
		if !ok {
			cacheErrors.WithLabelValues("mget").Inc()
			continue
		}
		entry, err := m.decodeEntry([]byte(data))
		if err != nil || entry == nil {
			cacheMisses.Inc()
			continue
		}
		cacheHits.Inc()
		entries[keys[i].DOI] = entry
	}
	return entries, nil
}

// Set stores a cache entry with TTL derived from the entry's Expires field.
// Already-expired entries are not stored.
func (m *Manager) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// SetMany stores multiple entries in one pipeline round trip. Expired
// entries are skipped.
func (m *Manager) SetMany(ctx context.Context, entries map[Key]*Entry) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := m.redis.Pipeline()
	for key, entry := range entries {
		if entry == nil {
			continue
		}
		ttl := entry.TTL()
		if ttl <= 0 {
			continue
		}
		data, err := json.Marshal(entry)
		if err != nil {
			cacheErrors.WithLabelValues("set").Inc()
			return fmt.Errorf("marshal cache entry: %w", err)
		}
		pipe.Set(ctx, key.String(), data, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis pipeline set: %w", err)
	}
	return nil
}

// Delete removes a cache entry.
func (m *Manager) Delete(ctx context.Context, key Key) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		cacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// decodeEntry unmarshals an entry, returning nil (not an error) if the
// entry is readable but expired.
func (m *Manager) decodeEntry(data []byte) (*Entry, error) {
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if entry.IsExpired() {
		return nil, nil
	}
	return &entry, nil
}
