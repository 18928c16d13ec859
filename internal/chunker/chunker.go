// Package chunker splits long text into an ordered sequence of overlapping,
// token-bounded chunks. Paragraphs are kept whole where possible; a paragraph
// that alone exceeds the budget is re-split on sentence boundaries.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pravnik-ai/pravnik/internal/domain"
)

// TokenCounter counts tokens in a text. Injectable so the same algorithm
// works with an exact tokenizer or the default approximation.
type TokenCounter func(text string) int

// Approx estimates the token count as rune count / 4. This is the documented
// approximation boundary: budgets derived from it are heuristic, not exact
// model token counts. Counts at least 1 for non-empty text.
func Approx(text string) int {
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	tokens := n / 4
	if tokens == 0 {
		return 1
	}
	return tokens
}

// Chunker splits text under a token budget with a trailing-token overlap.
type Chunker struct {
	maxTokens     int
	overlapTokens int
	count         TokenCounter
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithTokenCounter overrides the default Approx counter.
func WithTokenCounter(count TokenCounter) Option {
	return func(c *Chunker) {
		if count != nil {
			c.count = count
		}
	}
}

// New creates a Chunker. overlapTokens must be smaller than maxTokens;
// violating this is a configuration error raised here, never per call.
func New(maxTokens, overlapTokens int, opts ...Option) (*Chunker, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("max_tokens must be positive, got %d: %w", maxTokens, domain.ErrChunkerConfig)
	}
	if overlapTokens < 0 {
		return nil, fmt.Errorf("overlap_tokens must not be negative, got %d: %w", overlapTokens, domain.ErrChunkerConfig)
	}
	if overlapTokens >= maxTokens {
		return nil, fmt.Errorf(
			"overlap_tokens (%d) must be smaller than max_tokens (%d): %w",
			overlapTokens, maxTokens, domain.ErrChunkerConfig,
		)
	}

	c := &Chunker{
		maxTokens:     maxTokens,
		overlapTokens: overlapTokens,
		count:         Approx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// unit is one accumulation step: a paragraph, a sentence, or an overlap seed.
// sep is the separator used when the unit follows another in the same chunk.
type unit struct {
	text string
	sep  string
}

// Split chunks text into overlapping pieces, each within the token budget.
// Empty input yields nil.
func (c *Chunker) Split(text string) []string {
	units := c.buildUnits(text)
	if len(units) == 0 {
		return nil
	}

	var chunks []string
	var buf strings.Builder
	bufTokens := 0
	seedOnly := false

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		chunk := buf.String()
		chunks = append(chunks, chunk)
		buf.Reset()
		bufTokens = 0

		// Seed the next buffer with the trailing overlap of the emitted chunk
		// so consecutive chunks share token-level context.
		if c.overlapTokens > 0 {
			seed := c.tailTokens(chunk)
			if seed != "" {
				buf.WriteString(seed)
				bufTokens = c.count(seed)
				seedOnly = true
			}
		}
	}

	place := func(u unit, tokens int) {
		if bufTokens > 0 && bufTokens+tokens > c.maxTokens {
			if !seedOnly {
				flush()
			}
			// The overlap seed plus this unit may still exceed the budget;
			// shorten the seed rather than the unit.
			if bufTokens > 0 && bufTokens+tokens > c.maxTokens {
				c.trimSeed(&buf, &bufTokens, c.maxTokens-tokens)
			}
		}
		c.appendUnit(&buf, &bufTokens, u, tokens)
		seedOnly = false
	}

	for _, u := range units {
		ut := c.count(u.text)

		// A single unit above the budget is hard-split on word boundaries;
		// every emitted chunk must stay within maxTokens.
		if ut > c.maxTokens {
			for _, piece := range c.splitOversize(u.text) {
				place(unit{text: piece, sep: " "}, c.count(piece))
			}
			continue
		}

		place(u, ut)
	}

	// A buffer holding nothing but the overlap seed repeats content already
	// emitted and is dropped.
	if buf.Len() > 0 && !seedOnly {
		chunks = append(chunks, buf.String())
	}

	return chunks
}

func (c *Chunker) appendUnit(buf *strings.Builder, bufTokens *int, u unit, tokens int) {
	if buf.Len() > 0 {
		buf.WriteString(u.sep)
	}
	buf.WriteString(u.text)
	*bufTokens += tokens
}

// buildUnits splits text into paragraphs, then re-splits any paragraph that
// alone exceeds the budget into sentences.
func (c *Chunker) buildUnits(text string) []unit {
	var units []unit
	for _, p := range splitParagraphs(text) {
		if c.count(p) <= c.maxTokens {
			units = append(units, unit{text: p, sep: "\n\n"})
			continue
		}
		for i, s := range splitSentences(p) {
			sep := " "
			if i == 0 {
				sep = "\n\n"
			}
			units = append(units, unit{text: s, sep: sep})
		}
	}
	return units
}

// trimSeed keeps at most budget tokens of the overlap seed, dropping words
// from the left. A non-positive budget clears the seed entirely.
func (c *Chunker) trimSeed(buf *strings.Builder, bufTokens *int, budget int) {
	seed := buf.String()
	buf.Reset()
	*bufTokens = 0
	if budget <= 0 {
		return
	}

	words := strings.Fields(seed)
	start := len(words)
	for start > 0 {
		candidate := strings.Join(words[start-1:], " ")
		if c.count(candidate) > budget {
			break
		}
		start--
	}
	if start == len(words) {
		return
	}

	trimmed := strings.Join(words[start:], " ")
	buf.WriteString(trimmed)
	*bufTokens = c.count(trimmed)
}

// tailTokens returns the trailing words of chunk worth overlapTokens tokens.
func (c *Chunker) tailTokens(chunk string) string {
	words := strings.Fields(chunk)
	if len(words) == 0 {
		return ""
	}

	start := len(words)
	for start > 0 {
		candidate := strings.Join(words[start-1:], " ")
		if c.count(candidate) > c.overlapTokens {
			break
		}
		start--
	}
	if start == len(words) {
		// Even a single word exceeds the overlap budget; take it anyway so
		// the overlap is never empty.
		start = len(words) - 1
	}
	return strings.Join(words[start:], " ")
}

// splitOversize breaks a unit that alone exceeds maxTokens into word-boundary
// pieces that each fit the budget.
func (c *Chunker) splitOversize(text string) []string {
	words := strings.Fields(text)
	var pieces []string
	var cur []string
	curTokens := 0

	for _, w := range words {
		wt := c.count(w)
		if len(cur) > 0 && curTokens+wt > c.maxTokens {
			pieces = append(pieces, strings.Join(cur, " "))
			cur = cur[:0]
			curTokens = 0
		}
		cur = append(cur, w)
		curTokens += wt
	}
	if len(cur) > 0 {
		pieces = append(pieces, strings.Join(cur, " "))
	}
	return pieces
}

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// splitParagraphs splits on blank lines and drops empty paragraphs.
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphSplit.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

var sentenceSplit = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?]+)`)

// splitSentences splits a paragraph on sentence-ending punctuation.
// Trailing text without terminal punctuation becomes the last sentence.
func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceSplit.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[loc[0]:loc[1]])
		if s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		out = append(out, rest)
	}
	if len(out) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
