package usecase

import (
	"fmt"
	"strings"
	"time"

	"hndigest/internal/domain"
)

// BuildDigest renders the ranked, summarized stories into the plain-text
// digest deliverable.
func BuildDigest(stories []domain.ScoredStory, now time.Time) domain.Digest {
	var b strings.Builder

	fmt.Fprintf(&b, "HackerNews AI Digest - %s\n", now.Format("January 2, 2006"))
	fmt.Fprintf(&b, "%d AI-related stories\n\n", len(stories))

	for i, s := range stories {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Story.Title)
		fmt.Fprintf(&b, "   HN score: %d | AI relevance: %d | Keywords: %s\n",
			s.Story.Score, s.RelevanceScore, strings.Join(s.MatchedKeywords, ", "))
		if s.Story.URL != "" {
			fmt.Fprintf(&b, "   %s\n", s.Story.URL)
		}
		fmt.Fprintf(&b, "   Comments: %s\n\n", hnItemURL(s.Story.ID))

		if s.Summary != "" {
			fmt.Fprintf(&b, "%s\n\n", s.Summary)
		}
	}

	return domain.Digest{
		Subject:     fmt.Sprintf("HN AI Digest - %d stories - %s", len(stories), now.Format("Jan 2, 2006")),
		TextContent: b.String(),
		StoryCount:  len(stories),
		GeneratedAt: now.Format(time.RFC3339),
	}
}
