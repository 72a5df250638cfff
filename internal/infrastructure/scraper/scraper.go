package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"hndigest/internal/domain"
	"hndigest/internal/ports"
)

const (
	userAgent = "hn-digest/1.0"

	// minContentLength rejects extractions too short to summarize;
	// maxContentLength caps what is handed to the summarizer.
	minContentLength = 100
	maxContentLength = 8000

	selectorMinLength = 200
	fallbackMinLength = 500
)

// contentSelectors in order of preference; the first hit with enough text
// wins over later, more generic ones.
var contentSelectors = []string{
	"article",
	"[role=\"main\"]",
	".content",
	".article-content",
	".post-content",
	".entry-content",
	".story-body",
	"#content",
	"main",
	".main-content",
}

var skippedExtensions = []string{".pdf", ".doc", ".docx", ".zip", ".exe"}

// Scraper extracts readable article text and metadata from story URLs.
type Scraper struct {
	client       *http.Client
	requestDelay time.Duration
	logger       *slog.Logger
}

var _ ports.Scraper = (*Scraper)(nil)

// New wires an HTTP client; requestDelay is the politeness pause applied
// before every fetch.
func New(client *http.Client, requestDelay time.Duration, log *slog.Logger) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Scraper{client: client, requestDelay: requestDelay, logger: log}
}

// Scrape fetches the page and extracts its main content plus metadata.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (domain.ArticleContent, error) {
	if !scrapeable(rawURL) {
		return domain.ArticleContent{}, fmt.Errorf("url not scrapeable: %s", rawURL)
	}

	doc, err := s.fetchDocument(ctx, rawURL)
	if err != nil {
		return domain.ArticleContent{}, err
	}

	content := extractContent(doc)
	if content == "" {
		return domain.ArticleContent{}, fmt.Errorf("cannot extract content from %s", rawURL)
	}

	content = cleanContent(content)
	if len(content) < minContentLength {
		return domain.ArticleContent{}, fmt.Errorf("extracted content too short for %s", rawURL)
	}

	article := extractMetadata(doc)
	article.URL = rawURL
	article.Content = content

	s.debug("scraped article", "url", rawURL, "chars", len(content))
	return article, nil
}

// scrapeable filters out URLs that cannot yield readable HTML: non-HTTP
// schemes, binary downloads, and GitHub file views.
func scrapeable(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	lower := strings.ToLower(rawURL)
	for _, ext := range skippedExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}

	if strings.Contains(parsed.Host, "github.com") && strings.Contains(rawURL, "/blob/") {
		return false
	}

	return true
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if s.requestDelay > 0 {
		select {
		case <-time.After(s.requestDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", pageURL, resp.Status)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if contentType != "" && !strings.Contains(contentType, "text/html") {
		return nil, fmt.Errorf("non-html content type for %s: %s", pageURL, contentType)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// extractContent tries the preferred selectors first, then falls back to
// the largest text block among generic containers.
func extractContent(doc *goquery.Document) string {
	var best string

	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(sel.Text())
		if len(text) > selectorMinLength && len(text) > len(best) {
			best = text
		}
	}

	if best != "" {
		return best
	}

	doc.Find("div, section").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) > fallbackMinLength && len(text) > len(best) {
			best = text
		}
	})

	return best
}

// cleanContent drops short navigation-like lines and caps the length.
func cleanContent(content string) string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 10 {
			kept = append(kept, line)
		}
	}

	cleaned := strings.Join(kept, "\n\n")
	if len(cleaned) > maxContentLength {
		cleaned = cleaned[:maxContentLength] + "..."
	}

	return cleaned
}

func extractMetadata(doc *goquery.Document) domain.ArticleContent {
	var article domain.ArticleContent

	article.Title = strings.TrimSpace(doc.Find("title").First().Text())

	if og, ok := doc.Find("meta[property=\"og:title\"]").First().Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			article.Title = og
		}
	}

	if desc, ok := doc.Find("meta[name=\"description\"]").First().Attr("content"); ok {
		article.Description = strings.TrimSpace(desc)
	}

	dateSelectors := []string{
		"meta[property=\"article:published_time\"]",
		"meta[name=\"date\"]",
		"meta[name=\"publish_date\"]",
		"time[datetime]",
		".published",
		".date",
	}
	for _, selector := range dateSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		value := attrOrText(sel)
		if value != "" {
			article.PublicationDate = value
			break
		}
	}

	authorSelectors := []string{
		"meta[name=\"author\"]",
		"meta[property=\"article:author\"]",
		".author",
		".byline",
	}
	for _, selector := range authorSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		value := attrOrText(sel)
		if value != "" {
			article.Author = value
			break
		}
	}

	return article
}

func attrOrText(sel *goquery.Selection) string {
	if v, ok := sel.Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := sel.Attr("datetime"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(sel.Text())
}

func (s *Scraper) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
