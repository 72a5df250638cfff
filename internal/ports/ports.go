package ports

import (
	"context"
	"io"
	"time"

	"hndigest/internal/domain"
)

// StorySource pulls currently popular submissions from the aggregator.
type StorySource interface {
	TopStories(ctx context.Context) ([]domain.Story, error)
}

// Scraper fetches and extracts readable article text for a story URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) (domain.ArticleContent, error)
}

// Summarizer generates a short factual summary for a scraped article.
type Summarizer interface {
	Summarize(ctx context.Context, title, content, url string) (string, error)
}

// Mailer delivers the assembled digest to the configured recipient, and
// notifies the same recipient when a run fails before a digest exists.
type Mailer interface {
	SendDigest(ctx context.Context, subject, body string) error
	SendFallback(ctx context.Context, reason string) error
}

// SpeechSynthesizer converts one text chunk into encoded audio bytes.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}

// StoryRepository persists processed stories for deduplication/history.
type StoryRepository interface {
	AlreadyProcessed(ctx context.Context, ids []int) (map[int]bool, error)
	SaveProcessed(ctx context.Context, story domain.ProcessedStory) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
