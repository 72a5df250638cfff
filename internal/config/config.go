package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "HN_DIGEST_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	smtpUsernameEnv   = "SMTP_USERNAME"
	smtpPasswordEnv   = "SMTP_PASSWORD"
	emailRecipientEnv = "EMAIL_RECIPIENT"
	summaryModelEnv   = "SUMMARY_MODEL"
	podcastVoiceEnv   = "PODCAST_VOICE"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Database   DatabaseConfig   `yaml:"database"`
	HackerNews HackerNewsConfig `yaml:"hackernews"`
	Filter     FilterConfig     `yaml:"filter"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Email      EmailConfig      `yaml:"email"`
	Podcast    PodcastConfig    `yaml:"podcast"`
	Output     OutputConfig     `yaml:"output"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
}

// LoggingConfig controls log level and optional log file destination.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// HackerNewsConfig describes the aggregator API and politeness budget.
type HackerNewsConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	PagesToScan    int    `yaml:"pagesToScan"`
	StoriesPerPage int    `yaml:"storiesPerPage"`
	RequestDelayMs int    `yaml:"requestDelayMs"`
}

// RequestDelay converts the configured politeness pause to a duration.
func (h HackerNewsConfig) RequestDelay() time.Duration {
	return time.Duration(h.RequestDelayMs) * time.Millisecond
}

// FilterConfig bounds the ranked result set.
type FilterConfig struct {
	MaxArticles int `yaml:"maxArticles"`
}

// OpenAIConfig defines how to contact the OpenAI API for summaries.
type OpenAIConfig struct {
	APIKey       string `yaml:"apiKey"`
	SummaryModel string `yaml:"summaryModel"`
}

// EmailConfig wires SMTP delivery of the digest.
type EmailConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Recipient  string `yaml:"recipient"`
	MaxRetries int    `yaml:"maxRetries"`
}

// PodcastConfig controls text-to-speech rendering of the digest.
type PodcastConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Voice        string `yaml:"voice"`
	MaxChunkSize int    `yaml:"maxChunkSize"`
}

// OutputConfig locates local digest artifacts.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// SchedulerConfig defines when the pipeline should run in watch mode.
type SchedulerConfig struct {
	IntervalHours int            `yaml:"intervalHours"`
	Timezone      string         `yaml:"timezone"`
	location      *time.Location `yaml:"-"`
}

// Interval converts the configured watch cadence to a duration.
func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalHours) * time.Hour
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadPath(os.Getenv(configPathEnv))
}

// LoadPath reads the given YAML file over defaults and applies env overrides.
func LoadPath(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(summaryModelEnv); v != "" {
		c.OpenAI.SummaryModel = v
	}

	if v := os.Getenv(smtpUsernameEnv); v != "" {
		c.Email.Username = v
	}

	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Email.Password = v
	}

	if v := os.Getenv(emailRecipientEnv); v != "" {
		c.Email.Recipient = v
	}

	if v := os.Getenv(podcastVoiceEnv); v != "" {
		c.Podcast.Voice = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.File != "" {
		base.Logging.File = override.Logging.File
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.HackerNews.BaseURL != "" {
		base.HackerNews.BaseURL = override.HackerNews.BaseURL
	}
	if override.HackerNews.PagesToScan > 0 {
		base.HackerNews.PagesToScan = override.HackerNews.PagesToScan
	}
	if override.HackerNews.StoriesPerPage > 0 {
		base.HackerNews.StoriesPerPage = override.HackerNews.StoriesPerPage
	}
	if override.HackerNews.RequestDelayMs > 0 {
		base.HackerNews.RequestDelayMs = override.HackerNews.RequestDelayMs
	}

	if override.Filter.MaxArticles > 0 {
		base.Filter.MaxArticles = override.Filter.MaxArticles
	}

	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.SummaryModel != "" {
		base.OpenAI.SummaryModel = override.OpenAI.SummaryModel
	}

	if override.Email.Host != "" {
		base.Email.Host = override.Email.Host
	}
	if override.Email.Port > 0 {
		base.Email.Port = override.Email.Port
	}
	if override.Email.Username != "" {
		base.Email.Username = override.Email.Username
	}
	if override.Email.Password != "" {
		base.Email.Password = override.Email.Password
	}
	if override.Email.Recipient != "" {
		base.Email.Recipient = override.Email.Recipient
	}
	if override.Email.MaxRetries > 0 {
		base.Email.MaxRetries = override.Email.MaxRetries
	}

	if override.Podcast.Enabled {
		base.Podcast.Enabled = true
	}
	if override.Podcast.Voice != "" {
		base.Podcast.Voice = override.Podcast.Voice
	}
	if override.Podcast.MaxChunkSize > 0 {
		base.Podcast.MaxChunkSize = override.Podcast.MaxChunkSize
	}

	if override.Output.Dir != "" {
		base.Output.Dir = override.Output.Dir
	}

	if override.Scheduler.IntervalHours > 0 {
		base.Scheduler.IntervalHours = override.Scheduler.IntervalHours
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info", File: "hn-digest.log"},
		Database: DatabaseConfig{DSN: ""},
		HackerNews: HackerNewsConfig{
			BaseURL:        "https://hacker-news.firebaseio.com/v0",
			PagesToScan:    2,
			StoriesPerPage: 30,
			RequestDelayMs: 100,
		},
		Filter: FilterConfig{MaxArticles: 100},
		OpenAI: OpenAIConfig{
			APIKey:       "",
			SummaryModel: "gpt-4o-mini",
		},
		Email: EmailConfig{
			Host:       "smtp.gmail.com",
			Port:       465,
			MaxRetries: 3,
		},
		Podcast: PodcastConfig{
			Enabled:      false,
			Voice:        "fable",
			MaxChunkSize: 4000,
		},
		Output:    OutputConfig{Dir: "digests"},
		Scheduler: SchedulerConfig{IntervalHours: 24, Timezone: defaultTimezone, location: tz},
	}
}
