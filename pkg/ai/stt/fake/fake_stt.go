// Package fake provides a deterministic Transcriber for testing.
package fake

import (
	"context"
	"sync"

	"github.com/chriscow/voicechat-go/pkg/ai"
	"github.com/chriscow/voicechat-go/pkg/ai/stt"
)

// FakeTranscriber returns a scripted transcript regardless of the audio input.
type FakeTranscriber struct {
	mu    sync.Mutex
	Text  string
	Err   error
	calls int

	// LastRequest records the most recent request for assertions.
	LastRequest stt.Request
}

// NewFakeTranscriber creates a fake that always transcribes to text.
func NewFakeTranscriber(text string) *FakeTranscriber {
	return &FakeTranscriber{Text: text}
}

// Transcribe returns the scripted transcript, or the scripted error wrapped
// the same way the real provider wraps failures.
func (f *FakeTranscriber) Transcribe(ctx context.Context, req stt.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.LastRequest = req

	if err := ctx.Err(); err != nil {
		return "", ai.NewProviderError(ai.ProviderSTT, "transcribe", err)
	}
	if f.Err != nil {
		return "", ai.NewProviderError(ai.ProviderSTT, "transcribe", f.Err)
	}
	return f.Text, nil
}

// Calls returns how many times Transcribe has been invoked.
func (f *FakeTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
