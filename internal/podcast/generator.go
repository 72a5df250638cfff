package podcast

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"hndigest/internal/ports"
)

// DefaultMaxChunkSize keeps each synthesis request safely under the
// speech API's 4096-character input limit.
const DefaultMaxChunkSize = 4000

// Generator renders digest text into a single audio file, synthesizing
// chunk by chunk and concatenating the raw encoded segments. Segments
// share encoder settings, so byte-level concatenation is valid for the
// streamed mp3 output.
type Generator struct {
	synth        ports.SpeechSynthesizer
	maxChunkSize int
	logger       *slog.Logger
}

// NewGenerator wires a speech synthesizer; maxChunkSize <= 0 selects the
// default ceiling.
func NewGenerator(synth ports.SpeechSynthesizer, maxChunkSize int, log *slog.Logger) *Generator {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	return &Generator{synth: synth, maxChunkSize: maxChunkSize, logger: log}
}

// Generate converts text to speech and writes the result to outputPath.
// Blank input is rejected before any synthesis call. On the multi-chunk
// path every temporary segment is removed before returning, on success
// and failure alike, and a failed render leaves no destination artifact.
func (g *Generator) Generate(ctx context.Context, text, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("cannot generate podcast from empty text")
	}
	if g.synth == nil {
		return fmt.Errorf("speech synthesizer is not configured")
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	chunks := SplitText(text, g.maxChunkSize)
	g.info("starting podcast generation", "chunks", len(chunks), "output", outputPath)

	if len(chunks) == 1 {
		if err := g.synthesizeToFile(ctx, chunks[0], outputPath); err != nil {
			g.removeArtifact(outputPath)
			return err
		}
		if err := verifyNonEmpty(outputPath); err != nil {
			g.removeArtifact(outputPath)
			return err
		}
		return nil
	}

	return g.renderSegments(ctx, chunks, outputPath)
}

// renderSegments synthesizes each chunk to a uniquely named temporary
// file, then concatenates them in chunk order into outputPath.
func (g *Generator) renderSegments(ctx context.Context, chunks []string, outputPath string) error {
	tempPaths := make([]string, 0, len(chunks))
	defer func() {
		for _, p := range tempPaths {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				g.warn("cannot remove temp segment", "path", p, "error", err)
			}
		}
	}()

	for i, chunk := range chunks {
		tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("hndigest-%s-%03d.mp3", uuid.NewString(), i))
		tempPaths = append(tempPaths, tempPath)

		if err := g.synthesizeToFile(ctx, chunk, tempPath); err != nil {
			return fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}
		if err := verifyNonEmpty(tempPath); err != nil {
			return fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}
	}

	if err := concatenate(tempPaths, outputPath); err != nil {
		g.removeArtifact(outputPath)
		return err
	}

	if err := verifyNonEmpty(outputPath); err != nil {
		g.removeArtifact(outputPath)
		return err
	}
	return nil
}

// removeArtifact deletes whatever was written to the destination so a
// failed render leaves no partial file behind.
func (g *Generator) removeArtifact(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		g.warn("cannot remove partial podcast file", "path", path, "error", err)
	}
}

func (g *Generator) synthesizeToFile(ctx context.Context, chunk, path string) error {
	stream, err := g.synth.Synthesize(ctx, chunk)
	if err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}
	defer stream.Close()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}

	if _, err := io.Copy(out, stream); err != nil {
		_ = out.Close()
		return fmt.Errorf("write audio file: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close audio file: %w", err)
	}

	return nil
}

// concatenate appends the raw bytes of each segment, in order, to dst.
func concatenate(segments []string, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create podcast file: %w", err)
	}

	for _, segment := range segments {
		in, err := os.Open(segment)
		if err != nil {
			_ = out.Close()
			return fmt.Errorf("open segment %s: %w", segment, err)
		}
		if _, err := io.Copy(out, in); err != nil {
			_ = in.Close()
			_ = out.Close()
			return fmt.Errorf("append segment %s: %w", segment, err)
		}
		if err := in.Close(); err != nil {
			_ = out.Close()
			return fmt.Errorf("close segment %s: %w", segment, err)
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close podcast file: %w", err)
	}

	return nil
}

// verifyNonEmpty guards against an API call that reported success but
// produced a missing or truncated artifact.
func verifyNonEmpty(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("podcast file was not created at %s: %w", path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("generated podcast file is empty: %s", path)
	}
	return nil
}

func (g *Generator) info(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Info(msg, args...)
	}
}

func (g *Generator) warn(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Warn(msg, args...)
	}
}
