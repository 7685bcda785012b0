package openai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chriscow/voicechat-go/pkg/ai"
	"github.com/chriscow/voicechat-go/pkg/ai/llm"
	openai "github.com/sashabaranov/go-openai"
)

// ChatGenerator implements llm.Generator using OpenAI chat completions.
type ChatGenerator struct {
	client       *openai.Client
	model        string
	summaryModel string
}

// GenerateStream opens a streaming chat completion. Fragments are the
// per-delta content pieces exactly as the provider emits them.
func (g *ChatGenerator) GenerateStream(ctx context.Context, req llm.GenerateRequest) (llm.Stream, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	stream, err := g.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, ai.NewProviderError(ai.ProviderLLM, "generate", err)
	}
	return &chatStream{stream: stream}, nil
}

// Summarize performs one synchronous completion asking for a 3-5 sentence
// summary of the transcript. Low temperature: summaries should be stable.
func (g *ChatGenerator) Summarize(ctx context.Context, transcript string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.summaryModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "Summarize the following conversation in 3-5 sentences. " +
					"Preserve names, decisions, and any facts the assistant will need later.",
			},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
		MaxTokens:   200,
		Temperature: 0.3,
	})
	if err != nil {
		return "", ai.NewProviderError(ai.ProviderSummary, "summarize", err)
	}
	if len(resp.Choices) == 0 {
		return "", ai.NewProviderError(ai.ProviderSummary, "summarize", fmt.Errorf("no choices returned"))
	}
	return resp.Choices[0].Message.Content, nil
}

type chatStream struct {
	stream *openai.ChatCompletionStream
}

func (s *chatStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", ai.NewProviderError(ai.ProviderLLM, "recv", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		// Empty deltas (role headers, finish markers) are skipped so the
		// chunker only ever sees text.
		if content := resp.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
}

func (s *chatStream) Close() error {
	return s.stream.Close()
}
