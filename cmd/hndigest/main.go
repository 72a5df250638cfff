package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"hndigest/internal/app"
	"hndigest/internal/config"
	"hndigest/internal/logging"
	"hndigest/internal/usecase"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var (
		configPath  string
		debug       bool
		dryRun      bool
		withPodcast bool
	)

	rootCmd := &cobra.Command{
		Use:   "hndigest",
		Short: "Scan HackerNews for AI content and generate a digest",
		Long: `hndigest polls HackerNews for popular submissions, scores them for AI
relevance, summarizes the top articles, and renders the result as a text
digest, an email, and optionally a synthesized podcast.

Environment variables:
  HN_DIGEST_CONFIG  Path to the YAML config file
  OPENAI_API_KEY    OpenAI API key for summaries and speech
  DATABASE_DSN      Postgres DSN for processed-story deduplication
  SMTP_USERNAME     SMTP account for digest delivery
  SMTP_PASSWORD     SMTP app password
  EMAIL_RECIPIENT   Digest recipient address`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (overrides HN_DIGEST_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	newApp := func() (*app.Application, error) {
		path := configPath
		if path == "" {
			path = os.Getenv("HN_DIGEST_CONFIG")
		}
		cfg := config.LoadPath(path)
		if debug {
			cfg.Logging.Level = "debug"
		}
		logger := logging.NewWithFile(cfg.Logging.Level, cfg.Logging.File)
		return app.New(cfg, logger)
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Fetch and rank stories without generating a digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp()
			if err != nil {
				return err
			}

			stories, err := application.Scan(signalContext())
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d AI-related stories:\n", len(stories))
			for i, s := range stories {
				if i >= 10 {
					break
				}
				fmt.Printf("%2d. %s (HN:%d, AI:%d)\n", i+1, s.Story.Title, s.Story.Score, s.RelevanceScore)
				fmt.Printf("    Keywords: %s\n", strings.Join(s.MatchedKeywords, ", "))
				if s.Story.URL != "" {
					fmt.Printf("    URL: %s\n", s.Story.URL)
				}
				fmt.Println()
			}
			return nil
		},
	}

	digestCmd := &cobra.Command{
		Use:   "digest",
		Short: "Run the full pipeline once",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp()
			if err != nil {
				return err
			}
			return application.RunDigest(signalContext(), usecase.RunOptions{
				DryRun:      dryRun,
				WithPodcast: withPodcast,
			})
		},
	}
	digestCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run without sending email")
	digestCmd.Flags().BoolVar(&withPodcast, "podcast", false, "Render the digest to audio")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the pipeline on the configured interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp()
			if err != nil {
				return err
			}
			return application.Watch(signalContext(), usecase.RunOptions{
				DryRun:      dryRun,
				WithPodcast: withPodcast,
			})
		},
	}
	watchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run without sending email")
	watchCmd.Flags().BoolVar(&withPodcast, "podcast", false, "Render each digest to audio")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}
