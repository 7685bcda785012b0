// Package openai provides OpenAI-backed AI providers: Whisper for
// speech-to-text, streamed chat completions for generation and
// summarization, and gpt-4o-mini-tts for synthesis.
package openai

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds shared configuration for the OpenAI providers.
type Config struct {
	APIKey       string
	ChatModel    string // default gpt-4o-mini
	STTModel     string // default whisper-1
	TTSModel     string // default gpt-4o-mini-tts
	SummaryModel string // default: ChatModel
}

// Providers bundles the three provider implementations behind one client.
type Providers struct {
	STT *WhisperSTT
	LLM *ChatGenerator
	TTS *SpeechSynthesizer
}

// NewProviders creates the OpenAI provider set. A missing API key is a
// configuration error and fatal at startup, never per-turn.
func NewProviders(cfg Config) (*Providers, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = openai.GPT4oMini
	}
	if cfg.STTModel == "" {
		cfg.STTModel = openai.Whisper1
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = "gpt-4o-mini-tts"
	}
	if cfg.SummaryModel == "" {
		cfg.SummaryModel = cfg.ChatModel
	}

	client := openai.NewClient(cfg.APIKey)
	return &Providers{
		STT: &WhisperSTT{client: client, model: cfg.STTModel},
		LLM: &ChatGenerator{client: client, model: cfg.ChatModel, summaryModel: cfg.SummaryModel},
		TTS: &SpeechSynthesizer{client: client, model: cfg.TTSModel},
	}, nil
}
