package fake

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/matryer/is"

	"github.com/chriscow/voicechat-go/pkg/ai"
	"github.com/chriscow/voicechat-go/pkg/ai/llm"
)

func TestFakeGeneratorStreamsFragments(t *testing.T) {
	is := is.New(t)

	gen := NewFakeGenerator("Hello ", "there", "!")
	stream, err := gen.GenerateStream(context.Background(), llm.GenerateRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	is.NoErr(err)
	defer stream.Close()

	var got string
	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		is.NoErr(err)
		got += frag
	}
	is.Equal(got, "Hello there!")
	is.Equal(gen.StreamCalls(), 1)
	is.Equal(gen.LastRequest.Messages[0].Content, "hi")
}

func TestFakeGeneratorFailAfter(t *testing.T) {
	is := is.New(t)

	gen := NewFakeGenerator("one", "two", "three")
	gen.FailAfter = 2

	stream, err := gen.GenerateStream(context.Background(), llm.GenerateRequest{})
	is.NoErr(err)

	_, err = stream.Recv()
	is.NoErr(err)
	_, err = stream.Recv()
	is.NoErr(err)

	_, err = stream.Recv()
	is.True(err != nil)
	pe, ok := ai.AsProviderError(err)
	is.True(ok)
	is.Equal(pe.Provider, ai.ProviderLLM)
}

func TestFakeGeneratorStreamErr(t *testing.T) {
	is := is.New(t)

	gen := NewFakeGenerator("unused")
	gen.StreamErr = errors.New("down")

	_, err := gen.GenerateStream(context.Background(), llm.GenerateRequest{})
	is.True(err != nil)
	_, ok := ai.AsProviderError(err)
	is.True(ok)
}

func TestFakeGeneratorClosedStream(t *testing.T) {
	is := is.New(t)

	gen := NewFakeGenerator("one", "two")
	stream, err := gen.GenerateStream(context.Background(), llm.GenerateRequest{})
	is.NoErr(err)

	is.NoErr(stream.Close())
	_, err = stream.Recv()
	is.True(errors.Is(err, io.EOF)) // a closed stream yields EOF, not fragments
}

func TestFakeGeneratorSummarize(t *testing.T) {
	is := is.New(t)

	gen := NewFakeGenerator()
	gen.Summary = "short recap"

	summary, err := gen.Summarize(context.Background(), "User: hi\nAssistant: hello\n")
	is.NoErr(err)
	is.Equal(summary, "short recap")
	is.Equal(gen.SummarizeCalls(), 1)

	gen.SummarizeErr = errors.New("overloaded")
	_, err = gen.Summarize(context.Background(), "transcript")
	is.True(err != nil)
}
