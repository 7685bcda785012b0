// Package tts defines the text-to-speech provider interface: one chunk of
// text in, one opaque audio payload out, failing with a ProviderError.
package tts

import "context"

// SynthesizeRequest contains parameters for synthesizing one chunk.
type SynthesizeRequest struct {
	Text         string
	Voice        string
	Instructions string // natural-language prosody directive for this chunk
}

// Synthesizer converts a chunk of text to audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesizeRequest) ([]byte, error)
}
