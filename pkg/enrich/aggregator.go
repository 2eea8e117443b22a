package enrich

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/preprintlabs/listings/pkg/article"
	"github.com/preprintlabs/listings/pkg/seq"
)

var (
	pageRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listings_page_requests_total",
		Help: "Total enriched page requests by outcome",
	}, []string{"outcome"})

	pageRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "listings_page_request_duration_seconds",
		Help:    "Duration of enriched page requests in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
)

// Aggregator composes the enrichment stages and the page windower into one
// pipeline. Stage order is fixed: the cheap, never-failing stats stage runs
// on the full remaining upstream sequence, windowing bounds the cost, and
// the network-bound metadata stage plus the image stage run on the page
// only. A network-bound stage must never move ahead of the window.
type Aggregator struct {
	stats    *StatsStage
	metadata *MetadataStage
	images   *ImageStage
	logger   zerolog.Logger
}

// NewAggregator creates the pipeline orchestrator over the three concrete
// stage backends.
func NewAggregator(
	stats StatsLookup,
	metadata MetadataProvider,
	images ImageLookup,
	logger zerolog.Logger,
) *Aggregator {
	return &Aggregator{
		stats:    NewStatsStage(stats),
		metadata: NewMetadataStage(metadata),
		images:   NewImageStage(images),
		logger:   logger,
	}
}

// GetPage pulls one page from the upstream mention sequence, fully
// enriched and eagerly materialized, together with the pagination state.
// itemsPerPage == 0 disables windowing and returns everything; a negative
// value is rejected with ErrInvalidItemsPerPage before any upstream pull.
// A transport failure from a provider aborts the whole request and is
// returned unmodified; a per-item provider miss leaves that mention's slot
// empty.
func (a *Aggregator) GetPage(
	ctx context.Context,
	upstream seq.Seq[article.Mention],
	page int,
	itemsPerPage int,
) ([]article.Mention, PageState, error) {
	if itemsPerPage < 0 {
		pageRequestsTotal.WithLabelValues("invalid").Inc()
		return nil, PageState{}, ErrInvalidItemsPerPage
	}
	if page < 1 {
		page = 1
	}

	start := time.Now()
	defer func() {
		pageRequestDuration.Observe(time.Since(start).Seconds())
	}()

	statsSeq := seq.NewCounted(a.stats.Enrich(upstream))
	windowed := seq.Window[article.Mention](statsSeq, page, itemsPerPage)
	enriched := a.images.Enrich(a.metadata.Enrich(windowed))

	// Diagnostic sample and final materialization must consume the same
	// buffered sequence; a second wrap would re-run the expensive stages.
	if a.logger.GetLevel() <= zerolog.DebugLevel {
		peeked, rest, err := seq.Lookahead(ctx, enriched)
		if err != nil {
			pageRequestsTotal.WithLabelValues("error").Inc()
			return nil, PageState{}, err
		}
		if peeked.OK {
			a.logger.Debug().
				Str("doi", peeked.Item.DOI).
				Bool("has_meta", peeked.Item.Meta != nil).
				Bool("has_stats", peeked.Item.Stats != nil).
				Msg("First enriched mention of page")
		}
		enriched = rest
	}

	items, err := seq.Collect(ctx, enriched)
	if err != nil {
		pageRequestsTotal.WithLabelValues("error").Inc()
		return nil, PageState{}, err
	}

	state := PageState{
		Page:        page,
		IsEmpty:     len(items) == 0,
		HasPrevious: page > 1,
	}

	if itemsPerPage > 0 {
		// The windower left the stats sequence positioned one past the
		// page; a single peek decides has_next without realizing any
		// expensive fields.
		peeked, _, err := seq.Lookahead[article.Mention](ctx, statsSeq)
		if err != nil {
			pageRequestsTotal.WithLabelValues("error").Inc()
			return nil, PageState{}, err
		}
		if peeked.OK {
			state.HasNext = true
		} else {
			state.PageCount = page
		}
	} else {
		state.PageCount = 1
	}
	state.TotalSeen = statsSeq.Count()

	pageRequestsTotal.WithLabelValues("success").Inc()
	return items, state, nil
}
