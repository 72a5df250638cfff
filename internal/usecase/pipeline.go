package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"hndigest/internal/domain"
	"hndigest/internal/filter"
	"hndigest/internal/infrastructure/llm"
	"hndigest/internal/podcast"
	"hndigest/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source      ports.StorySource
	Ranker      *filter.Ranker
	Repository  ports.StoryRepository
	Scraper     ports.Scraper
	Summarizer  ports.Summarizer
	Mailer      ports.Mailer
	Podcast     *podcast.Generator
	MaxArticles int
	OutputDir   string
	Logger      *slog.Logger
}

// RunOptions control one digest run.
type RunOptions struct {
	DryRun      bool // skip email delivery
	WithPodcast bool // render the digest to audio
}

// Pipeline implements the digest workflow: fetch, rank, scrape,
// summarize, deliver.
type Pipeline struct {
	source      ports.StorySource
	ranker      *filter.Ranker
	repository  ports.StoryRepository
	scraper     ports.Scraper
	summarizer  ports.Summarizer
	mailer      ports.Mailer
	podcast     *podcast.Generator
	maxArticles int
	outputDir   string
	logger      *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:      deps.Source,
		ranker:      deps.Ranker,
		repository:  deps.Repository,
		scraper:     deps.Scraper,
		summarizer:  deps.Summarizer,
		mailer:      deps.Mailer,
		podcast:     deps.Podcast,
		maxArticles: deps.MaxArticles,
		outputDir:   deps.OutputDir,
		logger:      deps.Logger,
	}
}

// Scan fetches current top stories and returns the ranked relevant subset.
// An upstream failure and "nothing relevant" both surface as an empty
// result to the caller; the distinction is logged.
func (p *Pipeline) Scan(ctx context.Context) ([]domain.ScoredStory, error) {
	if p.source == nil {
		return nil, fmt.Errorf("story source is not configured")
	}

	stories, err := p.source.TopStories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}

	scored := p.ranker.Rank(stories, p.maxArticles)

	if p.repository != nil && len(scored) > 0 {
		ids := make([]int, len(scored))
		for i, s := range scored {
			ids[i] = s.Story.ID
		}

		seen, err := p.repository.AlreadyProcessed(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load processed: %w", err)
		}

		fresh := scored[:0]
		for _, s := range scored {
			if !seen[s.Story.ID] {
				fresh = append(fresh, s)
			}
		}
		scored = fresh
	}

	return scored, nil
}

// RunDigest executes a full run: scan, summarize each story, write the
// digest text file, email it, and optionally render the podcast.
func (p *Pipeline) RunDigest(ctx context.Context, opts RunOptions) error {
	now := time.Now()

	scored, err := p.Scan(ctx)
	if err != nil {
		p.notifyFailure(ctx, opts, err)
		return err
	}

	if len(scored) == 0 {
		p.warn("no relevant stories found, skipping digest")
		return nil
	}

	for i := range scored {
		scored[i].Summary = p.summarize(ctx, scored[i].Story)
	}

	digest := BuildDigest(scored, now)

	digestPath, err := p.writeDigestFile(digest, now)
	if err != nil {
		p.notifyFailure(ctx, opts, err)
		return err
	}
	p.info("digest written", "path", digestPath, "stories", digest.StoryCount)

	var mailErr error
	if p.mailer != nil && !opts.DryRun {
		if mailErr = p.mailer.SendDigest(ctx, digest.Subject, digest.TextContent); mailErr != nil {
			p.error("digest email failed, local copy kept", "path", digestPath, "error", mailErr)
		}
	}

	if opts.WithPodcast && p.podcast != nil {
		podcastPath := podcast.Filename(digestPath)
		if err := p.podcast.Generate(ctx, digest.TextContent, podcastPath); err != nil {
			p.error("podcast generation failed", "error", err)
		} else {
			p.info("podcast written", "path", podcastPath)
		}
	}

	p.saveProcessed(ctx, scored)

	if mailErr != nil {
		return fmt.Errorf("send digest email: %w", mailErr)
	}
	return nil
}

// notifyFailure emails the recipient that no digest is coming. Delivery
// is best effort; the run's original error is what the caller sees.
func (p *Pipeline) notifyFailure(ctx context.Context, opts RunOptions, cause error) {
	if p.mailer == nil || opts.DryRun {
		return
	}
	if err := p.mailer.SendFallback(ctx, cause.Error()); err != nil {
		p.warn("fallback notification failed", "error", err)
	}
}

// summarize produces a story summary, degrading to a fallback text when
// the article cannot be scraped or summarized.
func (p *Pipeline) summarize(ctx context.Context, story domain.Story) string {
	if story.URL == "" {
		return llm.FallbackSummary(story.Title, hnItemURL(story.ID), "no article URL")
	}
	if p.scraper == nil || p.summarizer == nil {
		return llm.FallbackSummary(story.Title, story.URL, "summarization disabled")
	}

	article, err := p.scraper.Scrape(ctx, story.URL)
	if err != nil {
		p.warn("scrape failed", "url", story.URL, "error", err)
		return llm.FallbackSummary(story.Title, story.URL, "content unavailable")
	}

	summary, err := p.summarizer.Summarize(ctx, story.Title, article.Content, story.URL)
	if err != nil {
		p.warn("summarization failed", "url", story.URL, "error", err)
		return llm.FallbackSummary(story.Title, story.URL, "summarization failed")
	}

	return summary
}

func (p *Pipeline) writeDigestFile(digest domain.Digest, now time.Time) (string, error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := fmt.Sprintf("digest_%s.txt", now.Format("20060102_1504"))
	path := filepath.Join(p.outputDir, name)

	if err := os.WriteFile(path, []byte(digest.TextContent), 0o644); err != nil {
		return "", fmt.Errorf("write digest file: %w", err)
	}

	return path, nil
}

func (p *Pipeline) saveProcessed(ctx context.Context, scored []domain.ScoredStory) {
	if p.repository == nil {
		return
	}

	for _, s := range scored {
		err := p.repository.SaveProcessed(ctx, domain.ProcessedStory{
			Story:         s.Story,
			Summary:       s.Summary,
			CombinedScore: s.CombinedScore,
			Status:        domain.StatusDelivered,
		})
		if err != nil {
			p.warn("persist story failed", "id", s.Story.ID, "error", err)
		}
	}
}

func hnItemURL(id int) string {
	return fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
