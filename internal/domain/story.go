package domain

// Story is a core entity describing one HackerNews submission.
type Story struct {
	ID          int
	Title       string
	URL         string
	Score       int
	By          string
	Time        int64
	Descendants int
}

// ScoredStory augments a Story with relevance scoring metadata.
// RelevanceScore > 0 is the sole admission criterion into a digest.
type ScoredStory struct {
	Story           Story
	RelevanceScore  int
	MatchedKeywords []string
	CombinedScore   int
	Summary         string
}

// ArticleContent holds the scraped text and metadata for one story URL.
type ArticleContent struct {
	URL             string
	Content         string
	Title           string
	Description     string
	Author          string
	PublicationDate string
}

// Digest is the assembled deliverable for one pipeline run.
type Digest struct {
	Subject     string
	TextContent string
	StoryCount  int
	GeneratedAt string
}

// ProcessingStatus enumerates pipeline milestones persisted for audit.
type ProcessingStatus string

const (
	StatusFiltered   ProcessingStatus = "filtered"
	StatusSummarized ProcessingStatus = "summarized"
	StatusDelivered  ProcessingStatus = "delivered"
)

// ProcessedStory persisted to Postgres for deduplication and audit.
type ProcessedStory struct {
	Story         Story
	Summary       string
	CombinedScore int
	Status        ProcessingStatus
}
