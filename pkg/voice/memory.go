package voice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Summarizer is the slice of the generation provider the compressor needs.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Compressor collapses an overlong history into a short summary plus a
// preserved tail. The trigger is a message count, not a token budget; that
// is a documented simplification carried over from the deployed system.
type Compressor struct {
	threshold  int
	tail       int
	summarizer Summarizer
	log        *slog.Logger
}

const (
	// DefaultCompressThreshold is the history length at which compression
	// runs: one system message plus twenty turn messages.
	DefaultCompressThreshold = 21

	// DefaultPreservedTail is how many recent messages survive verbatim.
	DefaultPreservedTail = 10
)

// NewCompressor creates a compressor. Non-positive threshold or tail fall
// back to the defaults.
func NewCompressor(summarizer Summarizer, threshold, tail int, log *slog.Logger) *Compressor {
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	if tail <= 0 {
		tail = DefaultPreservedTail
	}
	if log == nil {
		log = slog.Default()
	}
	return &Compressor{threshold: threshold, tail: tail, summarizer: summarizer, log: log}
}

// Compress returns the history unchanged while it is below the threshold.
// Above it, the leading system message is preserved first and verbatim, the
// most recent tail messages are preserved verbatim, and everything between
// is replaced by a single synthetic system message holding a provider
// summary. If summarization fails the prefix is simply dropped: compression
// is an optimization and must never block a turn.
func (c *Compressor) Compress(ctx context.Context, history []Message) []Message {
	if len(history) < c.threshold {
		return history
	}

	var head []Message
	rest := history
	if len(rest) > 0 && rest[0].Role == RoleSystem {
		head = rest[:1]
		rest = rest[1:]
	}
	if len(rest) <= c.tail {
		return history
	}

	prefix := rest[:len(rest)-c.tail]
	tail := rest[len(rest)-c.tail:]

	summary, err := c.summarizer.Summarize(ctx, transcribeHistory(prefix))
	if err != nil {
		c.log.Warn("history summarization failed, truncating instead",
			slog.Int("dropped", len(prefix)), slog.String("error", err.Error()))
		return append(append([]Message{}, head...), tail...)
	}

	compressed := make([]Message, 0, len(head)+1+len(tail))
	compressed = append(compressed, head...)
	compressed = append(compressed, Message{
		Role:      RoleSystem,
		Content:   "Summary of the earlier conversation: " + summary,
		Timestamp: time.Now(),
	})
	compressed = append(compressed, tail...)

	c.log.Debug("history compressed",
		slog.Int("before", len(history)), slog.Int("after", len(compressed)))
	return compressed
}

// transcribeHistory renders messages as a plain transcript for the
// summarization prompt.
func transcribeHistory(messages []Message) string {
	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			fmt.Fprintf(&b, "User: %s\n", m.Content)
		case RoleAssistant:
			fmt.Fprintf(&b, "Assistant: %s\n", m.Content)
		}
	}
	return b.String()
}
