package app

import (
	"context"
	"fmt"
	"log/slog"

	"hndigest/internal/config"
	"hndigest/internal/domain"
	"hndigest/internal/filter"
	"hndigest/internal/infrastructure/hn"
	"hndigest/internal/infrastructure/llm"
	"hndigest/internal/infrastructure/mail"
	"hndigest/internal/infrastructure/scheduler"
	"hndigest/internal/infrastructure/scraper"
	"hndigest/internal/infrastructure/storage"
	"hndigest/internal/infrastructure/tts"
	"hndigest/internal/logging"
	"hndigest/internal/podcast"
	"hndigest/internal/ports"
	"hndigest/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance. Optional collaborators
// (database, email, summarization, podcast) degrade to nil adapters when
// not configured; invalid configuration of an enabled collaborator is a
// construction-time failure.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.NewWithFile(cfg.Logging.Level, cfg.Logging.File)
	}

	taxonomy, err := filter.DefaultTaxonomy()
	if err != nil {
		return nil, fmt.Errorf("compile taxonomy: %w", err)
	}

	matcher := filter.NewMatcher(taxonomy, baseLogger.With("component", "filter"))
	ranker := filter.NewRanker(matcher, baseLogger.With("component", "ranker"))

	source := hn.NewClient(cfg.HackerNews, nil, baseLogger.With("component", "hn"))
	pageScraper := scraper.New(nil, cfg.HackerNews.RequestDelay(), baseLogger.With("component", "scraper"))

	var summarizer ports.Summarizer
	if cfg.OpenAI.APIKey != "" {
		s, err := llm.NewSummarizer(cfg.OpenAI, baseLogger.With("component", "summarizer"))
		if err != nil {
			return nil, fmt.Errorf("build summarizer: %w", err)
		}
		summarizer = s
	}

	var mailer ports.Mailer
	if cfg.Email.Username != "" || cfg.Email.Password != "" {
		m, err := mail.NewSender(cfg.Email, baseLogger.With("component", "mail"))
		if err != nil {
			return nil, fmt.Errorf("build mailer: %w", err)
		}
		mailer = m
	}

	var repository ports.StoryRepository
	if cfg.Database.DSN != "" {
		db, err := storage.Open(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		repository = storage.NewPostgresRepository(db)
	}

	var generator *podcast.Generator
	if cfg.Podcast.Enabled {
		synth, err := tts.NewClient(cfg.OpenAI.APIKey, cfg.Podcast.Voice)
		if err != nil {
			return nil, fmt.Errorf("build speech synthesizer: %w", err)
		}
		generator = podcast.NewGenerator(synth, cfg.Podcast.MaxChunkSize, baseLogger.With("component", "podcast"))
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:      source,
		Ranker:      ranker,
		Repository:  repository,
		Scraper:     pageScraper,
		Summarizer:  summarizer,
		Mailer:      mailer,
		Podcast:     generator,
		MaxArticles: cfg.Filter.MaxArticles,
		OutputDir:   cfg.Output.Dir,
		Logger:      baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline}, nil
}

// Scan runs fetch and ranking only.
func (a *Application) Scan(ctx context.Context) ([]domain.ScoredStory, error) {
	return a.pipeline.Scan(ctx)
}

// RunDigest performs a single full pipeline execution.
func (a *Application) RunDigest(ctx context.Context, opts usecase.RunOptions) error {
	return a.pipeline.RunDigest(ctx, opts)
}

// Watch runs the pipeline on the configured interval until ctx is done.
func (a *Application) Watch(ctx context.Context, opts usecase.RunOptions) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval())
	sched := usecase.NewScheduler(driver, a.pipeline, opts, a.cfg.Scheduler.Location(), a.logger.With("component", "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return sched.Stop(context.Background())
}
