package openai

import (
	"bytes"
	"context"
	"strings"

	"github.com/chriscow/voicechat-go/pkg/ai"
	"github.com/chriscow/voicechat-go/pkg/ai/stt"
	openai "github.com/sashabaranov/go-openai"
)

// WhisperSTT implements stt.Transcriber using OpenAI's Whisper API.
type WhisperSTT struct {
	client *openai.Client
	model  string
}

// extByMIME maps the browser capture formats to the filename extension the
// transcription endpoint uses to sniff the container.
var extByMIME = map[string]string{
	"audio/webm": ".webm",
	"audio/ogg":  ".ogg",
	"audio/mp4":  ".mp4",
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
	"audio/flac": ".flac",
}

// Transcribe sends the complete utterance to Whisper and returns the text.
func (w *WhisperSTT) Transcribe(ctx context.Context, req stt.Request) (string, error) {
	ext, ok := extByMIME[strings.ToLower(strings.TrimSpace(req.MIMEType))]
	if !ok {
		ext = ".webm"
	}

	areq := openai.AudioRequest{
		Model:    w.model,
		Reader:   bytes.NewReader(req.Audio),
		FilePath: "utterance" + ext,
	}
	// Language hints improve accuracy for non-English practice sessions.
	if req.Language != "" && req.Language != "en" {
		areq.Language = req.Language
	}

	resp, err := w.client.CreateTranscription(ctx, areq)
	if err != nil {
		return "", ai.NewProviderError(ai.ProviderSTT, "transcribe", err)
	}
	return resp.Text, nil
}
