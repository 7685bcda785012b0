// Package ai provides common types for the external AI provider
// implementations. It defines the error taxonomy shared across the STT,
// generation, synthesis and summarization providers: every failure that
// crosses a provider boundary is wrapped in a ProviderError, and cooperative
// cancellation is signalled with ErrCancelled rather than a provider failure.
package ai

import (
	"errors"
	"fmt"
)

// ErrCancelled signals that an in-flight turn was cancelled cooperatively.
// It is a normal control-flow outcome, not a user-visible error: callers
// surface it as turn_cancelled, never as turn_error.
var ErrCancelled = errors.New("turn cancelled")

// Provider identifies which external provider a failure came from.
type Provider string

const (
	ProviderSTT     Provider = "stt"
	ProviderLLM     Provider = "llm"
	ProviderTTS     Provider = "tts"
	ProviderSummary Provider = "summary"
)

// ProviderError wraps a failure (or timeout) from an external provider call.
// The pipeline maps every ProviderError to a single turn_error event; it is
// never retried within a turn.
type ProviderError struct {
	Provider Provider
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a failure of the given provider operation.
func NewProviderError(provider Provider, op string, err error) error {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// IsCancelled reports whether err is the cooperative cancellation signal.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// AsProviderError extracts a ProviderError from err's chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
