package tts

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestNewClientValidVoices(t *testing.T) {
	t.Parallel()

	for _, voice := range ValidVoices {
		if _, err := NewClient("sk-test", voice); err != nil {
			t.Fatalf("voice %q should be accepted: %v", voice, err)
		}
	}
}

func TestNewClientInvalidVoice(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("sk-test", "barry"); err == nil {
		t.Fatal("expected construction-time error for invalid voice")
	}
}

func TestNewClientMissingAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("", "fable"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

type fakeSpeechAPI struct {
	gotInput string
	gotVoice openai.SpeechVoice
	err      error
}

func (f *fakeSpeechAPI) CreateSpeech(_ context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error) {
	f.gotInput = req.Input
	f.gotVoice = req.Voice
	if f.err != nil {
		return openai.RawResponse{}, f.err
	}
	return openai.RawResponse{ReadCloser: io.NopCloser(strings.NewReader("mp3bytes"))}, nil
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	api := &fakeSpeechAPI{}
	c := &Client{api: api, voice: openai.VoiceNova}

	stream, err := c.Synthesize(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if string(data) != "mp3bytes" {
		t.Fatalf("unexpected payload: %q", data)
	}
	if api.gotInput != "hello there" {
		t.Fatalf("unexpected input: %q", api.gotInput)
	}
	if api.gotVoice != openai.VoiceNova {
		t.Fatalf("unexpected voice: %q", api.gotVoice)
	}
}

func TestSynthesizeAPIError(t *testing.T) {
	t.Parallel()

	api := &fakeSpeechAPI{err: errors.New("rate limit exceeded")}
	c := &Client{api: api, voice: openai.VoiceFable}

	if _, err := c.Synthesize(context.Background(), "hello"); err == nil {
		t.Fatal("expected error from failing API")
	}
}
