package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"hndigest/internal/ports"
)

// ValidVoices enumerates the voices accepted by the speech API.
var ValidVoices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

// ErrMissingAPIKey is returned at construction time when no credential is
// configured.
var ErrMissingAPIKey = errors.New("openai api key is required")

// speechAPI is the slice of the OpenAI client the synthesizer depends on.
type speechAPI interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Client synthesizes speech through the OpenAI TTS API with a fixed model
// and voice, so independently rendered segments share encoder settings.
type Client struct {
	api   speechAPI
	voice openai.SpeechVoice
}

var _ ports.SpeechSynthesizer = (*Client)(nil)

// NewClient validates the voice against the accepted set; an invalid
// selection is a construction-time failure, not a render-time one.
func NewClient(apiKey, voice string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if !validVoice(voice) {
		return nil, fmt.Errorf("invalid voice %q, must be one of: %s", voice, strings.Join(ValidVoices, ", "))
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		voice: openai.SpeechVoice(voice),
	}, nil
}

// Synthesize converts one text chunk to an mp3 byte stream. The caller
// owns the returned reader and must close it.
func (c *Client) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech: %w", err)
	}
	return resp, nil
}

func validVoice(voice string) bool {
	for _, v := range ValidVoices {
		if v == voice {
			return true
		}
	}
	return false
}
