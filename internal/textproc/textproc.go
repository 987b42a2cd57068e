// Package textproc provides the text segmentation used to turn extracted
// page text into bounded-length, speakable chunks.
package textproc

import (
	"strings"
	"unicode"
)

// SplitChunks splits text into chunks of at most maxLength characters,
// keeping whole sentences together wherever possible. Sentences are
// detected on '.', '!' or '?' followed by whitespace. A single sentence
// longer than maxLength is force-split, breaking at the last whitespace
// inside the window when one exists.
//
// The function is pure and deterministic: identical input and maxLength
// always produce identical chunks. Chunk boundaries are the resumption
// keys for conversion, so any change here invalidates saved progress.
func SplitChunks(text string, maxLength int) []string {
	text = strings.TrimSpace(text)
	if text == "" || maxLength < 1 {
		return nil
	}

	var chunks []string
	var current []rune

	for _, sentence := range splitSentences(text) {
		runes := []rune(sentence)

		// A sentence that can never fit is force-split on its own.
		if len(runes) > maxLength {
			if len(current) > 0 {
				chunks = appendChunk(chunks, current)
				current = nil
			}
			chunks = forceSplit(chunks, runes, maxLength)
			continue
		}

		if len(current) == 0 {
			current = runes
			continue
		}

		// +1 for the joining space.
		if len(current)+1+len(runes) <= maxLength {
			current = append(current, ' ')
			current = append(current, runes...)
		} else {
			chunks = appendChunk(chunks, current)
			current = runes
		}
	}

	if len(current) > 0 {
		chunks = appendChunk(chunks, current)
	}

	return chunks
}

// splitSentences splits text at whitespace runs that follow terminal
// punctuation. The punctuation stays attached to its sentence, and
// stacked marks like "?!" are kept together.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string

	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}

		sentences = append(sentences, string(runes[start:i+1]))

		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}

	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}

	return sentences
}

// forceSplit chops an oversized sentence into pieces of at most maxLength
// runes. It prefers breaking at the last whitespace inside the window so
// words survive intact; when the window contains none, it breaks exactly
// at the boundary.
func forceSplit(chunks []string, runes []rune, maxLength int) []string {
	start := 0
	for start < len(runes) {
		end := start + maxLength
		if end > len(runes) {
			end = len(runes)
		}

		breakAt := -1
		if end < len(runes) {
			for i := end - 1; i > start; i-- {
				if unicode.IsSpace(runes[i]) {
					breakAt = i
					break
				}
			}
		}

		if breakAt == -1 {
			chunks = appendChunk(chunks, runes[start:end])
			start = end
		} else {
			chunks = appendChunk(chunks, runes[start:breakAt])
			start = breakAt + 1 // move past the space
		}
	}
	return chunks
}

// appendChunk trims and appends a chunk, dropping anything that trims to
// empty so callers never see blank chunks.
func appendChunk(chunks []string, runes []rune) []string {
	s := strings.TrimSpace(string(runes))
	if s == "" {
		return chunks
	}
	return append(chunks, s)
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// CleanText removes blank lines and per-line leading/trailing whitespace
// from extracted document text.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// TruncateText shortens text to at most maxLength runes, cutting at the
// last sentence boundary when one exists inside the limit.
func TruncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	truncated := string(runes[:maxLength])
	if i := strings.LastIndex(truncated, "."); i > 0 {
		return truncated[:i+1]
	}
	return truncated
}
