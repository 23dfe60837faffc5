package ingest

import (
	"strings"
	"unicode"
)

// Chunk splits text into overlapping windows of chunkSize characters,
// advancing by chunkSize-overlap each step so neighbouring chunks share
// context across the boundary. Windows are measured in runes, not bytes;
// a multibyte document must never be cut mid-character. When a window
// would cut a word, the boundary backs off to the nearest preceding space,
// but only if that space sits past the halfway point of the window; a
// short back-off is better than a pathologically short chunk. Chunks are
// trimmed; empty results are dropped. Deterministic: the same input always
// yields the same boundaries.
func Chunk(text string, chunkSize int, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	stride := chunkSize - overlap
	if stride <= 0 {
		stride = chunkSize
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + chunkSize
		last := false
		if end >= len(runes) {
			end = len(runes)
			last = true
		} else if !unicode.IsSpace(runes[end]) {
			if cut := lastSpace(runes[start:end]); cut > (end-start)/2 {
				end = start + cut
			}
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if last {
			break
		}
	}
	return chunks
}

func lastSpace(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == ' ' {
			return i
		}
	}
	return -1
}
