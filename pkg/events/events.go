// Package events loads the bulk review-platform event log and folds it into
// in-memory snapshots: per-article evaluation counts and per-list article
// mentions. Snapshots are immutable and swapped wholesale on refresh, so
// request-serving lookups never observe a partially applied event log.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Event names appearing in the event log. The evaluation names have
// recorded/removed variants that changed over the life of the log.
const (
	EventEvaluationRecorded            = "EvaluationRecorded"
	EventEvaluationPublicationRecorded = "EvaluationPublicationRecorded"
	EventEvaluationErased              = "IncorrectlyRecordedEvaluationErased"
	EventEvaluationRemoved             = "EvaluationRemoved"
	EventArticleAddedToList            = "ArticleAddedToList"
	EventArticleRemovedFromList        = "ArticleRemovedFromList"
)

var evaluationRecordedNames = map[string]struct{}{
	EventEvaluationRecorded:            {},
	EventEvaluationPublicationRecorded: {},
}

var evaluationRemovedNames = map[string]struct{}{
	EventEvaluationErased:  {},
	EventEvaluationRemoved: {},
}

// Event is one entry of the bulk event log.
type Event struct {
	Name              string    `json:"event_name"`
	Timestamp         time.Time `json:"event_timestamp"`
	ArticleID         string    `json:"article_id"`
	EvaluationLocator string    `json:"evaluation_locator"`
	ListID            string    `json:"list_id"`
}

// Source loads the full event log. The load is expensive and is expected to
// run behind a single-object cache plus the background refresh scheduler.
type Source interface {
	LoadEvents(ctx context.Context) ([]Event, error)
}

// HTTPSource loads the event log as a JSON array from an HTTP endpoint.
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSource creates an event source for the given URL.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// LoadEvents implements Source.
func (s *HTTPSource) LoadEvents(ctx context.Context) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create event log request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch event log: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch event log: unexpected status %d", resp.StatusCode)
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode event log: %w", err)
	}
	return events, nil
}
