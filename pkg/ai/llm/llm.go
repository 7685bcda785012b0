// Package llm defines the language generation provider interface. Generation
// is exposed as a lazy, finite, non-restartable stream of text fragments that
// the pipeline pulls from; cancellation is expressed by the caller simply not
// pulling the next fragment and closing the stream.
package llm

import "context"

// MessageRole identifies who produced a message in the conversation.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single entry in the prompt sent to the provider.
type Message struct {
	Role    MessageRole
	Content string
}

// GenerateRequest contains parameters for a streamed generation call.
type GenerateRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Stream is a lazy sequence of generated text fragments. Recv returns io.EOF
// when the provider signals end-of-stream. A stream cannot be restarted once
// consumption has begun; abandoning it early requires only Close.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Generator is the main interface for language generation providers.
type Generator interface {
	// GenerateStream opens a streaming generation call.
	GenerateStream(ctx context.Context, req GenerateRequest) (Stream, error)

	// Summarize produces a short (3-5 sentence) summary of the given
	// conversation transcript. Used by memory compression only.
	Summarize(ctx context.Context, transcript string) (string, error)
}
