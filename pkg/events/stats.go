package events

import (
	"github.com/preprintlabs/listings/pkg/article"
)

// StatsSnapshot is an immutable per-article evaluation count projection.
type StatsSnapshot struct {
	countByArticleID map[string]int
}

// FoldEvaluationStats reduces the event log into a stats snapshot. Article
// ids are matched case-insensitively; an erase event cancels one previously
// recorded evaluation identified by its locator.
func FoldEvaluationStats(events []Event) *StatsSnapshot {
	countByArticleID := make(map[string]int)
	articleIDByLocator := make(map[string]string)

	for _, event := range events {
		if _, ok := evaluationRecordedNames[event.Name]; ok {
			normalized := article.NormalizeArticleID(event.ArticleID)
			countByArticleID[normalized]++
			articleIDByLocator[event.EvaluationLocator] = normalized
			continue
		}
		if _, ok := evaluationRemovedNames[event.Name]; ok {
			normalized, known := articleIDByLocator[event.EvaluationLocator]
			if !known {
				continue
			}
			delete(articleIDByLocator, event.EvaluationLocator)
			if countByArticleID[normalized] > 0 {
				countByArticleID[normalized]--
			}
		}
	}

	return &StatsSnapshot{countByArticleID: countByArticleID}
}

// ArticleStats returns the stats for a DOI. Unknown DOIs yield zero counts.
func (s *StatsSnapshot) ArticleStats(doi string) article.Stats {
	if s == nil {
		return article.Stats{}
	}
	key := article.NormalizeArticleID(article.DOIArticleIDPrefix + doi)
	return article.Stats{EvaluationCount: s.countByArticleID[key]}
}
