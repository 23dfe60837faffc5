package ingest

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunk_UniformText(t *testing.T) {
	text := strings.Repeat("a", 2500)

	chunks := Chunk(text, 1000, 200)

	if len(chunks) != 3 {
		t.Fatalf("chunk count got %d, want 3", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk == "" {
			t.Errorf("chunk %d is empty after trimming", i)
		}
		if len(chunk) > 1000 {
			t.Errorf("chunk %d exceeds window size: %d", i, len(chunk))
		}
	}

	//windows start at 0, 800, 1600, so overlaps stay within the 200 limit
	wantLengths := []int{1000, 1000, 900}
	for i, chunk := range chunks {
		if len(chunk) != wantLengths[i] {
			t.Errorf("chunk %d length got %d, want %d", i, len(chunk), wantLengths[i])
		}
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 60)

	first := Chunk(text, 1000, 200)
	second := Chunk(text, 1000, 200)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestChunk_BacksOffToWordBoundary(t *testing.T) {
	//a space near the end of the window, past the halfway point
	text := strings.Repeat("b", 900) + " " + strings.Repeat("c", 300)

	chunks := Chunk(text, 1000, 200)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if strings.ContainsRune(chunks[0], 'c') {
		t.Errorf("first chunk should have backed off before the word of c's: %q", chunks[0][880:])
	}
}

func TestChunk_NoBackOffBeforeHalfway(t *testing.T) {
	//only space is early in the window; backing off would produce a stub
	text := strings.Repeat("d", 100) + " " + strings.Repeat("e", 1400)

	chunks := Chunk(text, 1000, 200)

	if len(chunks[0]) <= 500 {
		t.Errorf("chunk backed off before the halfway point, length %d", len(chunks[0]))
	}
}

func TestChunk_MultibyteText(t *testing.T) {
	//2400 characters, 7200 bytes, no spaces anywhere: every window boundary
	//falls inside a rune if slicing happens at byte offsets
	text := strings.Repeat("世", 2400)

	chunks := Chunk(text, 1000, 200)

	if len(chunks) != 3 {
		t.Fatalf("chunk count got %d, want 3", len(chunks))
	}
	wantLengths := []int{1000, 1000, 800}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		if got := utf8.RuneCountInString(chunk); got != wantLengths[i] {
			t.Errorf("chunk %d rune count got %d, want %d", i, got, wantLengths[i])
		}
	}

	//windows are measured in characters, not bytes
	if chunks[0] != strings.Repeat("世", 1000) {
		t.Errorf("first chunk does not hold the first 1000 characters")
	}
}

func TestChunk_MultibyteWordBoundary(t *testing.T) {
	text := strings.Repeat("言", 900) + " " + strings.Repeat("語", 300)

	chunks := Chunk(text, 1000, 200)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
	}
	if strings.ContainsRune(chunks[0], '語') {
		t.Errorf("first chunk should have backed off at the space")
	}
}

func TestChunk_EdgeCases(t *testing.T) {
	if got := Chunk("", 1000, 200); len(got) != 0 {
		t.Errorf("empty text should yield no chunks, got %d", len(got))
	}
	if got := Chunk("   \n\t  ", 1000, 200); len(got) != 0 {
		t.Errorf("whitespace-only text should yield no chunks, got %d", len(got))
	}
	if got := Chunk("short text", 1000, 200); len(got) != 1 || got[0] != "short text" {
		t.Errorf("small text should come back as one trimmed chunk, got %v", got)
	}
}
