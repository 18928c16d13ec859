package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pravnik-ai/pravnik/internal/domain"
)

// wordCounter treats every whitespace-separated word as one token, so tests
// can assert exact budgets and overlaps.
func wordCounter(text string) int {
	return len(strings.Fields(text))
}

func newWordChunker(t *testing.T, maxTokens, overlapTokens int) *Chunker {
	t.Helper()
	c, err := New(maxTokens, overlapTokens, WithTokenCounter(wordCounter))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// paragraph builds a paragraph of n distinct words with the given prefix.
func paragraph(prefix string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(words, " ")
}

func TestNew_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		overlap int
	}{
		{name: "overlap equals max", max: 100, overlap: 100},
		{name: "overlap above max", max: 100, overlap: 150},
		{name: "zero max", max: 0, overlap: 0},
		{name: "negative overlap", max: 100, overlap: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.max, tt.overlap)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, domain.ErrChunkerConfig) {
				t.Errorf("expected ErrChunkerConfig, got %v", err)
			}
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	c := newWordChunker(t, 60, 10)

	for _, input := range []string{"", "   ", "\n\n\n", "\t \n"} {
		if got := c.Split(input); got != nil {
			t.Errorf("Split(%q) = %v, want nil", input, got)
		}
	}
}

func TestSplit_SingleParagraphFits(t *testing.T) {
	c := newWordChunker(t, 60, 10)
	text := "Zmluva sa uzatvára na dobu neurčitú."

	got := c.Split(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0] != text {
		t.Errorf("chunk = %q, want %q", got[0], text)
	}
}

func TestSplit_EveryChunkWithinBudget(t *testing.T) {
	c := newWordChunker(t, 30, 5)
	text := paragraph("a", 40) + "\n\n" + paragraph("b", 55) + "\n\n" + paragraph("c", 12)

	for i, chunk := range c.Split(text) {
		if n := wordCounter(chunk); n > 30 {
			t.Errorf("chunk %d has %d tokens, budget is 30", i, n)
		}
	}
}

func TestSplit_ConsecutiveChunksOverlap(t *testing.T) {
	const overlap = 10
	c := newWordChunker(t, 60, overlap)
	text := paragraph("a", 50) + "\n\n" + paragraph("b", 50) + "\n\n" + paragraph("c", 50)

	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		tail := strings.Join(prev[len(prev)-overlap:], " ")
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not start with the last %d tokens of chunk %d:\nprev tail: %q\nchunk:     %q",
				i, overlap, i-1, tail, chunks[i])
		}
	}
}

// Ingesting a 3-paragraph document of ~150 tokens with a 60/10 budget yields
// exactly 3 chunks.
func TestSplit_ThreeParagraphDocument(t *testing.T) {
	c := newWordChunker(t, 60, 10)
	p1 := paragraph("alpha", 50)
	p2 := paragraph("beta", 50)
	p3 := paragraph("gamma", 50)

	chunks := c.Split(p1 + "\n\n" + p2 + "\n\n" + p3)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}

	for i, chunk := range chunks {
		if n := wordCounter(chunk); n > 60 {
			t.Errorf("chunk %d has %d tokens, budget is 60", i, n)
		}
	}

	words1 := strings.Fields(chunks[0])
	tail := strings.Join(words1[len(words1)-10:], " ")
	if !strings.HasPrefix(chunks[1], tail) {
		t.Errorf("chunk 2 should start with the last 10 tokens of chunk 1, got %q", chunks[1][:40])
	}
}

func TestSplit_OversizeParagraphResplitOnSentences(t *testing.T) {
	c := newWordChunker(t, 10, 2)
	// One paragraph of four sentences, 6 words each: exceeds the budget as a
	// whole but each sentence fits.
	var sentences []string
	for i := 0; i < 4; i++ {
		sentences = append(sentences, paragraph(fmt.Sprintf("s%d_", i), 5)+" end.")
	}
	text := strings.Join(sentences, " ")

	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := wordCounter(chunk); n > 10 {
			t.Errorf("chunk %d has %d tokens, budget is 10", i, n)
		}
	}
}

func TestSplit_OversizeSentenceHardSplit(t *testing.T) {
	c := newWordChunker(t, 8, 0)
	// A single sentence far beyond the budget must still be split.
	text := paragraph("w", 30) + "."

	chunks := c.Split(text)
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := wordCounter(chunk); n > 8 {
			t.Errorf("chunk %d has %d tokens, budget is 8", i, n)
		}
	}
}

// Concatenating chunks minus their overlap prefixes must reproduce the
// original token stream: chunking loses no content.
func TestSplit_ReconstructsTokenStream(t *testing.T) {
	const overlap = 5
	c := newWordChunker(t, 25, overlap)
	text := paragraph("x", 33) + "\n\n" + paragraph("y", 21) + "\n\n" + paragraph("z", 47)

	chunks := c.Split(text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	var rebuilt []string
	for i, chunk := range chunks {
		words := strings.Fields(chunk)
		if i > 0 {
			// Strip the overlap copied from the previous chunk: the longest
			// suffix of the previous chunk that prefixes this one.
			words = words[sharedOverlap(strings.Fields(chunks[i-1]), words):]
		}
		rebuilt = append(rebuilt, words...)
	}

	original := strings.Fields(text)
	if len(rebuilt) != len(original) {
		t.Fatalf("rebuilt %d tokens, original has %d", len(rebuilt), len(original))
	}
	for i := range original {
		if rebuilt[i] != original[i] {
			t.Fatalf("token %d differs: got %q, want %q", i, rebuilt[i], original[i])
		}
	}
}

// sharedOverlap returns the length of the longest suffix of prev that is a
// prefix of cur.
func sharedOverlap(prev, cur []string) int {
	max := len(prev)
	if len(cur) < max {
		max = len(cur)
	}
	for n := max; n > 0; n-- {
		match := true
		for i := 0; i < n; i++ {
			if prev[len(prev)-n+i] != cur[i] {
				match = false
				break
			}
		}
		if match {
			return n
		}
	}
	return 0
}

func TestSplit_ShortTailNotReemitted(t *testing.T) {
	c := newWordChunker(t, 10, 4)
	// 14 words: first chunk takes 10, overlap seeds 4, remaining 4 words
	// join the seed. No chunk may consist of overlap alone.
	text := paragraph("p", 7) + "\n\n" + paragraph("q", 7)

	chunks := c.Split(text)
	for i, chunk := range chunks {
		if i == 0 {
			continue
		}
		prev := strings.Fields(chunks[i-1])
		tail := strings.Join(prev[len(prev)-4:], " ")
		if chunk == tail {
			t.Errorf("chunk %d is overlap-only: %q", i, chunk)
		}
	}
}

func TestApprox(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{text: "", want: 0},
		{text: "ab", want: 1},
		{text: "abcd", want: 1},
		{text: "abcdefgh", want: 2},
		{text: strings.Repeat("x", 400), want: 100},
	}

	for _, tt := range tests {
		if got := Approx(tt.text); got != tt.want {
			t.Errorf("Approx(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
