// Package enrich composes the lazy multi-stage enrichment pipeline over
// article mentions: cheap in-memory stages on the full sequence, page
// windowing, then network-bound stages on the page only. Stages preserve
// sequence length and order; every stage returns new records via functional
// update and never mutates its input.
package enrich

import (
	"github.com/preprintlabs/listings/pkg/article"
	"github.com/preprintlabs/listings/pkg/seq"
)

// Stage is one order- and cardinality-preserving transform that populates a
// single enrichment slot on every mention. The concrete stage set is fixed
// at construction time.
type Stage interface {
	Enrich(src seq.Seq[article.Mention]) seq.Seq[article.Mention]
}

// StatsLookup resolves per-article stats from an in-memory snapshot.
// Implementations are O(1) per call and never fail; an unknown DOI yields
// zero-valued stats.
type StatsLookup interface {
	ArticleStats(doi string) article.Stats
}

// StatsStage populates the stats slot from a snapshot lookup. It is cheap
// enough to run on the full pre-window sequence.
type StatsStage struct {
	lookup StatsLookup
}

// NewStatsStage creates a stats enrichment stage.
func NewStatsStage(lookup StatsLookup) *StatsStage {
	return &StatsStage{lookup: lookup}
}

// Enrich implements Stage.
func (s *StatsStage) Enrich(src seq.Seq[article.Mention]) seq.Seq[article.Mention] {
	return seq.Map(src, func(m article.Mention) article.Mention {
		return m.WithStats(s.lookup.ArticleStats(m.DOI))
	})
}

// ImageLookup resolves an article image from an in-memory mapping that is
// refreshed out of band. O(1) per call, never fails.
type ImageLookup interface {
	ImageFor(doi string) (article.ImageRef, bool)
}

// ImageStage populates the image slot from a mapping lookup. A mention with
// no mapped image keeps the slot empty.
type ImageStage struct {
	lookup ImageLookup
}

// NewImageStage creates an image enrichment stage.
func NewImageStage(lookup ImageLookup) *ImageStage {
	return &ImageStage{lookup: lookup}
}

// Enrich implements Stage.
func (s *ImageStage) Enrich(src seq.Seq[article.Mention]) seq.Seq[article.Mention] {
	return seq.Map(src, func(m article.Mention) article.Mention {
		image, ok := s.lookup.ImageFor(m.DOI)
		if !ok {
			return m
		}
		return m.WithImages(image)
	})
}
