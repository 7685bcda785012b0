package openai

import (
	"context"
	"io"

	"github.com/chriscow/voicechat-go/pkg/ai"
	"github.com/chriscow/voicechat-go/pkg/ai/tts"
	openai "github.com/sashabaranov/go-openai"
)

// SpeechSynthesizer implements tts.Synthesizer using the OpenAI speech API.
// Prosody instructions ride along per request, so each chunk can carry the
// tone directive chosen for it.
type SpeechSynthesizer struct {
	client *openai.Client
	model  string
}

// Synthesize converts one chunk of text to MP3 audio bytes.
func (s *SpeechSynthesizer) Synthesize(ctx context.Context, req tts.SynthesizeRequest) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(req.Voice),
		Instructions:   req.Instructions,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, ai.NewProviderError(ai.ProviderTTS, "synthesize", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, ai.NewProviderError(ai.ProviderTTS, "read response", err)
	}
	return audio, nil
}
