// Package source adapts page-at-a-time upstreams into lazy mention
// sequences. A paged provider is pulled one page at a time: page N+1 is
// fetched only when the consumer asks for an item beyond page N, so a
// windowed read near the front of a listing never fans out across the
// whole result set.
package source

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/preprintlabs/listings/pkg/article"
	"github.com/preprintlabs/listings/pkg/seq"
)

var sourcePagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "listings_source_pages_fetched_total",
	Help: "Total upstream pages fetched by source name",
}, []string{"source"})

// PageFetcher fetches a single page of mentions from an upstream
// provider. Page numbers start at 1. A short page (fewer than pageSize
// items) or an empty page ends the sequence.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageNum, pageSize int) ([]article.Mention, error)
}

// PageFetcherFunc adapts a function to the PageFetcher interface.
type PageFetcherFunc func(ctx context.Context, pageNum, pageSize int) ([]article.Mention, error)

func (f PageFetcherFunc) FetchPage(ctx context.Context, pageNum, pageSize int) ([]article.Mention, error) {
	return f(ctx, pageNum, pageSize)
}

// Paged returns a lazy sequence over a paged upstream. The name labels
// fetch metrics. The sequence is idempotent at the end: once exhausted,
// further pulls return no items without fetching.
func Paged(name string, fetcher PageFetcher, pageSize int) seq.Seq[article.Mention] {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &pagedSeq{
		name:     name,
		fetcher:  fetcher,
		pageSize: pageSize,
		nextPage: 1,
	}
}

type pagedSeq struct {
	name     string
	fetcher  PageFetcher
	pageSize int

	buffer   []article.Mention
	pos      int
	nextPage int
	done     bool
}

func (s *pagedSeq) Next(ctx context.Context) (article.Mention, bool, error) {
	for s.pos >= len(s.buffer) {
		if s.done {
			return article.Mention{}, false, nil
		}
		if err := ctx.Err(); err != nil {
			return article.Mention{}, false, err
		}

		page, err := s.fetcher.FetchPage(ctx, s.nextPage, s.pageSize)
		if err != nil {
			return article.Mention{}, false, fmt.Errorf("fetch page %d: %w", s.nextPage, err)
		}
		sourcePagesFetchedTotal.WithLabelValues(s.name).Inc()

		// A short page is the last one
		if len(page) < s.pageSize {
			s.done = true
		}
		s.nextPage++
		s.buffer = page
		s.pos = 0

		if len(page) == 0 {
			return article.Mention{}, false, nil
		}
	}

	item := s.buffer[s.pos]
	s.pos++
	return item, true, nil
}

// FromSlice returns a sequence over an in-memory snapshot of mentions.
func FromSlice(mentions []article.Mention) seq.Seq[article.Mention] {
	return seq.FromSlice(mentions)
}
