package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"hndigest/internal/config"
	"hndigest/internal/domain"
	"hndigest/internal/ports"
)

const userAgent = "hn-digest/1.0"

// Client talks to the HackerNews Firebase API with a fixed politeness
// pause between consecutive requests.
type Client struct {
	baseURL        string
	pagesToScan    int
	storiesPerPage int
	requestDelay   time.Duration
	httpClient     *http.Client
	logger         *slog.Logger
}

var _ ports.StorySource = (*Client)(nil)

// NewClient builds a client from configuration; a nil http.Client gets a
// sane timeout default.
func NewClient(cfg config.HackerNewsConfig, httpClient *http.Client, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:        cfg.BaseURL,
		pagesToScan:    cfg.PagesToScan,
		storiesPerPage: cfg.StoriesPerPage,
		requestDelay:   cfg.RequestDelay(),
		httpClient:     httpClient,
		logger:         log,
	}
}

// item mirrors the loosely shaped API response; absent fields default to
// their zero values at this boundary so the core never sees missing keys.
type item struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Descendants int    `json:"descendants"`
}

// TopStories fetches the current top-story IDs and resolves each to its
// story details, skipping non-story items (jobs, polls) and items that
// fail to load.
func (c *Client) TopStories(ctx context.Context) ([]domain.Story, error) {
	ids, err := c.topStoryIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}

	c.debug("fetching story details", "count", len(ids))

	stories := make([]domain.Story, 0, len(ids))
	for _, id := range ids {
		story, err := c.story(ctx, id)
		if err != nil {
			c.warn("skip story", "id", id, "error", err)
			continue
		}
		if story == nil {
			continue
		}
		stories = append(stories, *story)
	}

	c.debug("fetched stories", "count", len(stories))
	return stories, nil
}

func (c *Client) topStoryIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &ids); err != nil {
		return nil, err
	}

	limit := c.pagesToScan * c.storiesPerPage
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// story returns nil without error for items that exist but are not
// submissions of type "story".
func (c *Client) story(ctx context.Context, id int) (*domain.Story, error) {
	var it item
	if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.baseURL, id), &it); err != nil {
		return nil, err
	}

	if it.Type != "story" {
		return nil, nil
	}

	return &domain.Story{
		ID:          it.ID,
		Title:       it.Title,
		URL:         it.URL,
		Score:       it.Score,
		By:          it.By,
		Time:        it.Time,
		Descendants: it.Descendants,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	if c.requestDelay > 0 {
		select {
		case <-time.After(c.requestDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("hackernews returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
