// Package fake provides a deterministic Synthesizer for testing.
package fake

import (
	"context"
	"errors"
	"sync"

	"github.com/chriscow/voicechat-go/pkg/ai"
	"github.com/chriscow/voicechat-go/pkg/ai/tts"
)

// FakeSynthesizer produces predictable audio payloads ("audio:" + text) and
// can be scripted to fail on the Nth call, which tests use to exercise the
// pipeline's mid-turn synthesis failure path.
type FakeSynthesizer struct {
	mu sync.Mutex

	// FailOnCall, when > 0, makes that call (1-based) fail.
	FailOnCall int

	// Err is the failure used when FailOnCall triggers, defaulting to a
	// generic error.
	Err error

	calls    int
	Requests []tts.SynthesizeRequest
}

// NewFakeSynthesizer creates a fake synthesizer that always succeeds.
func NewFakeSynthesizer() *FakeSynthesizer {
	return &FakeSynthesizer{}
}

func (f *FakeSynthesizer) Synthesize(ctx context.Context, req tts.SynthesizeRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.Requests = append(f.Requests, req)

	if f.FailOnCall > 0 && f.calls == f.FailOnCall {
		err := f.Err
		if err == nil {
			err = errors.New("synthesis unavailable")
		}
		return nil, ai.NewProviderError(ai.ProviderTTS, "synthesize", err)
	}
	return []byte("audio:" + req.Text), nil
}

// Calls returns how many times Synthesize has been invoked.
func (f *FakeSynthesizer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
