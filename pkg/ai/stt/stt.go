// Package stt defines the speech-to-text provider interface. The orchestrator
// treats transcription as a black box: audio bytes in, text out, failing with
// a ProviderError. Transcription happens once per utterance and is never
// retried mid-turn; a transient failure is surfaced rather than doubling
// perceived latency.
package stt

import "context"

// Request contains one utterance worth of audio to transcribe.
type Request struct {
	Audio    []byte
	MIMEType string // e.g. audio/webm; used to pick a container hint for the provider
	Language string // BCP-47-ish language hint, empty for auto-detect
}

// Transcriber converts a complete audio utterance to text.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}
