package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"hndigest/internal/config"
	"hndigest/internal/ports"
)

const (
	summaryMaxTokens   = 300
	summaryTemperature = 0.3
	minContentLength   = 50
)

// ErrMissingAPIKey is returned at construction time when no credential is
// configured.
var ErrMissingAPIKey = errors.New("openai api key is required")

// chatAPI is the slice of the OpenAI client the summarizer depends on.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Summarizer generates short factual article summaries via the OpenAI
// chat-completions API.
type Summarizer struct {
	api    chatAPI
	model  string
	logger *slog.Logger
}

var _ ports.Summarizer = (*Summarizer)(nil)

// NewSummarizer builds a summarizer from configuration; a missing API key
// is a construction-time failure, never a call-time one.
func NewSummarizer(cfg config.OpenAIConfig, log *slog.Logger) (*Summarizer, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Summarizer{
		api:    openai.NewClient(cfg.APIKey),
		model:  cfg.SummaryModel,
		logger: log,
	}, nil
}

// Summarize asks for a 1-2 paragraph factual summary of the article.
func (s *Summarizer) Summarize(ctx context.Context, title, content, url string) (string, error) {
	if len(strings.TrimSpace(content)) < minContentLength {
		return "", fmt.Errorf("content too short for summarization: %s", url)
	}

	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: summaryPrompt(title, content, url)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", url, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty summary response for %s", url)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("empty summary generated for %s", url)
	}

	s.debug("generated summary", "url", url, "chars", len(summary))
	return summary, nil
}

func summaryPrompt(title, content, url string) string {
	return fmt.Sprintf(`Please provide a concise, factual summary of this article in 1-2 paragraphs. Focus on the main points and key findings. Be objective and avoid speculation.

Article Title: %s
Article URL: %s

Article Content:
%s

Instructions:
- Write 1-2 clear, informative paragraphs
- Focus on facts and key points, not opinions
- Include specific details when relevant (numbers, names, dates)
- Write in third person
- Don't add information not present in the article
- If the article is primarily technical, explain key concepts briefly

Summary:`, title, url, content)
}

// FallbackSummary is used when scraping or summarization fails for a story.
func FallbackSummary(title, url, reason string) string {
	return fmt.Sprintf("**%s**\n\nSummary not available (%s). Please visit the original article for full details.\n\nSource: %s", title, reason, url)
}

func (s *Summarizer) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
