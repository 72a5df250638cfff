package podcast

import "strings"

// Break-quality thresholds as fractions of the chunk ceiling. A sentence or
// paragraph break is only taken at or past 70% of the window, a word break
// at or past 80%; earlier breaks would produce pathologically short chunks.
const (
	sentenceBreakRatio = 0.7
	wordBreakRatio     = 0.8
)

var sentenceEndings = []string{". ", "! ", "? "}

// SplitText splits text into ordered chunks of at most maxChunkSize bytes,
// preferring sentence endings, then paragraph breaks, then word boundaries,
// and falling back to a hard cut. Concatenating the chunks (modulo the
// whitespace trimmed at split points) reproduces the input.
func SplitText(text string, maxChunkSize int) []string {
	if maxChunkSize < 1 {
		maxChunkSize = 1
	}
	if len(text) <= maxChunkSize {
		return []string{text}
	}

	var chunks []string
	remaining := text

	for len(remaining) > maxChunkSize {
		window := remaining[:maxChunkSize]
		cut := breakPoint(window, maxChunkSize)

		chunks = append(chunks, remaining[:cut])
		remaining = strings.TrimLeft(remaining[cut:], " \t\r\n")
	}

	if remaining != "" {
		chunks = append(chunks, remaining)
	}

	return chunks
}

// breakPoint finds where to cut the current window, in descending order of
// prosodic quality. The returned offset is always in (0, len(window)].
func breakPoint(window string, maxChunkSize int) int {
	sentenceFloor := int(float64(maxChunkSize) * sentenceBreakRatio)
	wordFloor := int(float64(maxChunkSize) * wordBreakRatio)

	if idx := lastSentenceEnd(window); idx >= sentenceFloor {
		return idx + 2 // keep the punctuation and its trailing space
	}

	if idx := strings.LastIndex(window, "\n\n"); idx >= sentenceFloor {
		return idx + 2 // keep the paragraph break
	}

	if idx := strings.LastIndex(window, " "); idx >= wordFloor && idx > 0 {
		return idx // the space itself is dropped by the remainder trim
	}

	return maxChunkSize
}

// lastSentenceEnd returns the offset of the latest sentence-ending
// punctuation followed by a space, or -1.
func lastSentenceEnd(window string) int {
	best := -1
	for _, ending := range sentenceEndings {
		if idx := strings.LastIndex(window, ending); idx > best {
			best = idx
		}
	}
	return best
}
