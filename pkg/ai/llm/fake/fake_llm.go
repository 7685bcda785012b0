// Package fake provides a deterministic Generator for testing. The fake
// streams a scripted response in fixed-size fragments so tests can exercise
// chunk boundaries and mid-stream failure without a live provider.
package fake

import (
	"context"
	"io"
	"sync"

	"github.com/chriscow/voicechat-go/pkg/ai"
	"github.com/chriscow/voicechat-go/pkg/ai/llm"
)

// FakeGenerator streams scripted fragments and answers summarize calls with
// a scripted summary.
type FakeGenerator struct {
	mu sync.Mutex

	// Fragments is the exact sequence of fragments each stream yields.
	Fragments []string

	// StreamErr, when set, is returned by GenerateStream immediately.
	StreamErr error

	// FailAfter, when > 0, makes Recv fail after that many fragments.
	FailAfter int

	Summary      string
	SummarizeErr error

	streamCalls    int
	summarizeCalls int

	// LastRequest records the most recent generation request.
	LastRequest llm.GenerateRequest
}

// NewFakeGenerator creates a fake that streams the given fragments.
func NewFakeGenerator(fragments ...string) *FakeGenerator {
	return &FakeGenerator{
		Fragments: fragments,
		Summary:   "Earlier, the user and assistant talked through several topics.",
	}
}

func (f *FakeGenerator) GenerateStream(ctx context.Context, req llm.GenerateRequest) (llm.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamCalls++
	f.LastRequest = req

	if f.StreamErr != nil {
		return nil, ai.NewProviderError(ai.ProviderLLM, "generate", f.StreamErr)
	}
	return &fakeStream{fragments: f.Fragments, failAfter: f.FailAfter}, nil
}

func (f *FakeGenerator) Summarize(ctx context.Context, transcript string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summarizeCalls++

	if f.SummarizeErr != nil {
		return "", ai.NewProviderError(ai.ProviderSummary, "summarize", f.SummarizeErr)
	}
	return f.Summary, nil
}

// StreamCalls returns how many streams have been opened.
func (f *FakeGenerator) StreamCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streamCalls
}

// SummarizeCalls returns how many summarize calls have been made.
func (f *FakeGenerator) SummarizeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summarizeCalls
}

type fakeStream struct {
	fragments []string
	failAfter int
	pos       int
	closed    bool
}

func (s *fakeStream) Recv() (string, error) {
	if s.closed {
		return "", io.EOF
	}
	if s.failAfter > 0 && s.pos >= s.failAfter {
		return "", ai.NewProviderError(ai.ProviderLLM, "recv", io.ErrUnexpectedEOF)
	}
	if s.pos >= len(s.fragments) {
		return "", io.EOF
	}
	frag := s.fragments[s.pos]
	s.pos++
	return frag, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}
