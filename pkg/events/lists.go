package events

import (
	"sort"

	"github.com/preprintlabs/listings/pkg/article"
)

// ListsSnapshot is an immutable projection of list membership: for each
// list id, the DOI-based article mentions currently on the list.
type ListsSnapshot struct {
	mentionsByListID map[string][]article.Mention
}

// FoldLists reduces the event log into a lists snapshot. A removal event
// drops the article from the list; re-adding after removal keeps the newer
// timestamp. Non-DOI article ids are skipped.
func FoldLists(events []Event) *ListsSnapshot {
	type memberKey struct {
		listID    string
		articleID string
	}
	members := make(map[memberKey]Event)

	for _, event := range events {
		key := memberKey{
			listID:    event.ListID,
			articleID: article.NormalizeArticleID(event.ArticleID),
		}
		switch event.Name {
		case EventArticleAddedToList:
			members[key] = event
		case EventArticleRemovedFromList:
			delete(members, key)
		}
	}

	mentionsByListID := make(map[string][]article.Mention)
	for key, event := range members {
		doi := article.DOIFromArticleID(event.ArticleID)
		if doi == "" {
			continue
		}
		mentionsByListID[key.listID] = append(mentionsByListID[key.listID], article.Mention{
			DOI:       doi,
			CreatedAt: event.Timestamp,
		})
	}

	// Most recently added first; DOI as tie breaker to keep the order
	// deterministic across refreshes.
	for _, mentions := range mentionsByListID {
		sort.Slice(mentions, func(i, j int) bool {
			if !mentions[i].CreatedAt.Equal(mentions[j].CreatedAt) {
				return mentions[i].CreatedAt.After(mentions[j].CreatedAt)
			}
			return mentions[i].DOI < mentions[j].DOI
		})
	}

	return &ListsSnapshot{mentionsByListID: mentionsByListID}
}

// MentionsFor returns the mentions of a list, most recently added first,
// and whether the list is known at all.
func (s *ListsSnapshot) MentionsFor(listID string) ([]article.Mention, bool) {
	if s == nil {
		return nil, false
	}
	mentions, ok := s.mentionsByListID[listID]
	return mentions, ok
}

// ListIDs returns the known list ids in unspecified order.
func (s *ListsSnapshot) ListIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.mentionsByListID))
	for id := range s.mentionsByListID {
		ids = append(ids, id)
	}
	return ids
}
