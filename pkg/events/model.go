package events

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/preprintlabs/listings/pkg/article"
	"github.com/preprintlabs/listings/pkg/objcache"
)

// Model owns the event-fold snapshots. The bulk event load runs through a
// single-object cache so concurrent refreshes collapse into one load; the
// folded snapshots are swapped atomically and the request path only ever
// reads the current snapshot, without blocking on a reload.
type Model struct {
	source Source
	cache  objcache.SingleObjectCache[[]Event]
	logger zerolog.Logger

	stats atomic.Pointer[StatsSnapshot]
	lists atomic.Pointer[ListsSnapshot]
}

// NewModel creates an event model on top of a source and a cache for the
// bulk load.
func NewModel(source Source, cache objcache.SingleObjectCache[[]Event], logger zerolog.Logger) *Model {
	return &Model{
		source: source,
		cache:  cache,
		logger: logger,
	}
}

// Refresh loads the event log (through the cache, so a fresh log is not
// re-fetched) and refolds both snapshots. On failure the previous
// snapshots stay in place.
func (m *Model) Refresh(ctx context.Context) error {
	events, err := m.cache.GetOrLoad(ctx, m.source.LoadEvents)
	if err != nil {
		return err
	}

	m.stats.Store(FoldEvaluationStats(events))
	m.lists.Store(FoldLists(events))

	m.logger.Debug().
		Int("events", len(events)).
		Msg("Refolded event snapshots")
	return nil
}

// ArticleStats returns the current evaluation stats for a DOI. Before the
// first successful refresh all counts are zero.
func (m *Model) ArticleStats(doi string) article.Stats {
	return m.stats.Load().ArticleStats(doi)
}

// MentionsFor returns the current mentions of a list, most recently added
// first. The second return is false if the list is unknown (or no refresh
// has completed yet).
func (m *Model) MentionsFor(listID string) ([]article.Mention, bool) {
	return m.lists.Load().MentionsFor(listID)
}
