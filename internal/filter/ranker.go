package filter

import (
	"log/slog"
	"sort"

	"hndigest/internal/domain"
)

// Ranker admits relevant stories, merges relevance with aggregator
// popularity, and produces the bounded ranked result set.
type Ranker struct {
	matcher *Matcher
	logger  *slog.Logger
}

// NewRanker wires the keyword matcher into the ranking stage.
func NewRanker(matcher *Matcher, log *slog.Logger) *Ranker {
	return &Ranker{matcher: matcher, logger: log}
}

// Rank scores every story, admits only those with a positive relevance
// score, sorts by combined score (aggregator points + relevance)
// descending, and truncates to maxResults. Ties keep arrival order.
// Input stories are never mutated.
func (r *Ranker) Rank(stories []domain.Story, maxResults int) []domain.ScoredStory {
	scored := make([]domain.ScoredStory, 0, len(stories))

	for _, story := range stories {
		relevance, matched := r.matcher.Score(story.Title, story.URL)
		if relevance <= 0 {
			continue
		}

		scored = append(scored, domain.ScoredStory{
			Story:           story,
			RelevanceScore:  relevance,
			MatchedKeywords: matched,
			CombinedScore:   story.Score + relevance,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CombinedScore > scored[j].CombinedScore
	})

	if maxResults >= 0 && len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	if r.logger != nil {
		r.logger.Info("filtered stories", "input", len(stories), "relevant", len(scored))
	}

	return scored
}
