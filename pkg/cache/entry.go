package cache

import (
	"time"

	"github.com/preprintlabs/listings/pkg/article"
)

// Entry is one cached metadata lookup result.
type Entry struct {
	// Meta is the article metadata as returned by the provider.
	Meta article.Metadata `json:"meta"`

	// FetchedAt is when the metadata was fetched from the provider.
	FetchedAt time.Time `json:"fetched_at"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`
}

// NewEntry creates an entry expiring maxAge from now.
func NewEntry(meta article.Metadata, maxAge time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Meta:      meta,
		FetchedAt: now,
		Expires:   now.Add(maxAge),
	}
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
