package voice

import (
	"strings"
	"unicode/utf8"
)

// Chunker groups an incremental stream of generated text fragments into
// speakable chunks. The first chunk of a turn is released after a single
// completed sentence, to minimize time-to-first-audio; subsequent chunks
// wait for a small group of sentences so synthesis boundaries fall on
// natural prosody breaks.
//
// Chunk texts are exact slices of the input: concatenating every returned
// chunk plus the final Flush reproduces the fragment stream byte for byte.
// A Chunker holds no cross-turn state; use Reset (or a fresh Chunker) per
// turn.
type Chunker struct {
	firstSentences int
	groupSentences int
	minChars       int

	remainder string
	pending   []string
	emitted   int
}

// ChunkerConfig tunes sentence grouping.
type ChunkerConfig struct {
	// FirstSentences is how many completed sentences the first chunk needs.
	FirstSentences int
	// GroupSentences is how many completed sentences later chunks need (2-3).
	GroupSentences int
	// MinChars is the minimum length of a sentence candidate; shorter
	// candidates ("Mr.", "e.g.") are treated as abbreviations and absorbed
	// into the following sentence.
	MinChars int
}

// DefaultChunkerConfig matches the deployed streaming settings.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		FirstSentences: 1,
		GroupSentences: 2,
		MinChars:       12,
	}
}

// NewChunker creates a chunker. Zero config fields fall back to defaults.
func NewChunker(cfg ChunkerConfig) *Chunker {
	def := DefaultChunkerConfig()
	if cfg.FirstSentences <= 0 {
		cfg.FirstSentences = def.FirstSentences
	}
	if cfg.GroupSentences <= 0 {
		cfg.GroupSentences = def.GroupSentences
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = def.MinChars
	}
	return &Chunker{
		firstSentences: cfg.FirstSentences,
		groupSentences: cfg.GroupSentences,
		minChars:       cfg.MinChars,
	}
}

// Write appends a fragment and returns zero or more completed chunks.
// Empty fragments are no-ops.
func (c *Chunker) Write(fragment string) []string {
	if fragment == "" {
		return nil
	}
	c.remainder += fragment

	var chunks []string
	for {
		sentence, rest, ok := c.nextSentence()
		if !ok {
			break
		}
		c.pending = append(c.pending, sentence)
		c.remainder = rest

		if len(c.pending) >= c.target() {
			chunks = append(chunks, c.takePending())
		}
	}
	return chunks
}

// Flush returns whatever text remains (completed sentences still pending
// plus any partial remainder) as one final chunk. Returns "" if nothing is
// buffered. The chunker is ready for a new turn afterwards.
func (c *Chunker) Flush() string {
	chunk := strings.Join(c.pending, "") + c.remainder
	c.Reset()
	return chunk
}

// Reset discards all buffered state.
func (c *Chunker) Reset() {
	c.remainder = ""
	c.pending = nil
	c.emitted = 0
}

func (c *Chunker) target() int {
	if c.emitted == 0 {
		return c.firstSentences
	}
	return c.groupSentences
}

func (c *Chunker) takePending() string {
	chunk := strings.Join(c.pending, "")
	c.pending = nil
	c.emitted++
	return chunk
}

// nextSentence scans the remainder for the earliest usable sentence
// boundary. A boundary is terminal punctuation followed by whitespace (or a
// CJK terminator, which needs no trailing space), provided the sentence
// candidate is long enough to rule out an abbreviation. Terminal punctuation
// at the very end of the remainder is not a boundary mid-stream: the next
// fragment may continue the token (e.g. a decimal number).
func (c *Chunker) nextSentence() (sentence, rest string, ok bool) {
	for i, r := range c.remainder {
		end := -1
		switch r {
		case '.', '!', '?':
			next, width := utf8.DecodeRuneInString(c.remainder[i+1:])
			if width == 0 { // end of buffer, wait for more input
				continue
			}
			if next == ' ' || next == '\n' || next == '\t' || next == '\r' {
				end = i + 1
			}
		case '。', '！', '？':
			end = i + utf8.RuneLen(r)
		}
		if end < 0 {
			continue
		}
		candidate := c.remainder[:end]
		if len(strings.TrimSpace(candidate)) < c.minChars {
			continue
		}
		return candidate, c.remainder[end:], true
	}
	return "", "", false
}
