// Package article defines the records flowing through the enrichment
// pipeline. A Mention starts as a bare DOI reference and gains optional
// enrichment slots (stats, metadata, image) as it passes through stages.
package article

import (
	"strings"
	"time"
)

// DOIArticleIDPrefix prefixes DOI-based article identifiers in event logs.
const DOIArticleIDPrefix = "doi:"

// Metadata holds descriptive article metadata from a metadata provider.
type Metadata struct {
	DOI           string
	Title         string
	Abstract      string
	AuthorNames   []string
	PublishedDate *time.Time // nil if unknown
}

// Stats holds precomputed per-article counters.
type Stats struct {
	EvaluationCount int
}

// ImageRef points at a generated article image.
type ImageRef struct {
	URL string
}

// Mention is one identity-keyed record in a listing. It is treated as an
// immutable value: enrichment produces a new Mention via the With* methods,
// never in-place mutation.
type Mention struct {
	DOI       string
	CreatedAt time.Time
	Comment   string

	// Enrichment slots. Nil means "not populated" which is distinct from
	// "populated with zero values".
	Meta   *Metadata
	Stats  *Stats
	Images *ImageRef
}

// WithStats returns a copy of the mention with the stats slot populated.
func (m Mention) WithStats(stats Stats) Mention {
	m.Stats = &stats
	return m
}

// WithMeta returns a copy of the mention with the metadata slot populated.
func (m Mention) WithMeta(meta Metadata) Mention {
	m.Meta = &meta
	return m
}

// WithImages returns a copy of the mention with the image slot populated.
func (m Mention) WithImages(images ImageRef) Mention {
	m.Images = &images
	return m
}

// IsDOIArticleID reports whether an event article id is DOI based.
func IsDOIArticleID(articleID string) bool {
	return strings.HasPrefix(articleID, DOIArticleIDPrefix)
}

// DOIFromArticleID extracts the DOI from a "doi:"-prefixed article id.
// Returns "" for non-DOI article ids.
func DOIFromArticleID(articleID string) string {
	if !IsDOIArticleID(articleID) {
		return ""
	}
	return articleID[len(DOIArticleIDPrefix):]
}

// NormalizeArticleID lowercases an article id for map lookups. Event logs
// record DOIs with inconsistent casing.
func NormalizeArticleID(articleID string) string {
	return strings.ToLower(articleID)
}
