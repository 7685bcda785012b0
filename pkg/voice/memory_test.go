package voice

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matryer/is"

	llmfake "github.com/chriscow/voicechat-go/pkg/ai/llm/fake"
)

// longHistory builds a system message plus n alternating user/assistant
// messages.
func longHistory(n int) []Message {
	history := []Message{{Role: RoleSystem, Content: "persona"}}
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		history = append(history, Message{Role: role, Content: fmt.Sprintf("message %d", i)})
	}
	return history
}

func TestCompressorBelowThresholdUnchanged(t *testing.T) {
	is := is.New(t)

	gen := llmfake.NewFakeGenerator()
	comp := NewCompressor(gen, DefaultCompressThreshold, DefaultPreservedTail, nil)

	history := longHistory(15) // 16 total, below 21
	out := comp.Compress(context.Background(), history)

	is.Equal(len(out), len(history))
	is.Equal(gen.SummarizeCalls(), 0)
}

func TestCompressorSummarizesMiddle(t *testing.T) {
	is := is.New(t)

	gen := llmfake.NewFakeGenerator()
	gen.Summary = "They discussed several engineering topics."
	comp := NewCompressor(gen, DefaultCompressThreshold, DefaultPreservedTail, nil)

	history := longHistory(20) // 21 total, at threshold
	out := comp.Compress(context.Background(), history)

	// system + summary + last 10
	is.Equal(len(out), 12)
	is.Equal(out[0].Role, RoleSystem)
	is.Equal(out[0].Content, "persona")
	is.Equal(out[1].Role, RoleSystem)
	is.True(strings.HasPrefix(out[1].Content, "Summary of the earlier conversation: "))
	is.True(strings.Contains(out[1].Content, gen.Summary))

	// The preserved tail is verbatim and in order.
	for i := 0; i < DefaultPreservedTail; i++ {
		is.Equal(out[2+i], history[len(history)-DefaultPreservedTail+i])
	}
	is.Equal(gen.SummarizeCalls(), 1)
}

func TestCompressorFallsBackToTruncation(t *testing.T) {
	is := is.New(t)

	gen := llmfake.NewFakeGenerator()
	gen.SummarizeErr = fmt.Errorf("model overloaded")
	comp := NewCompressor(gen, DefaultCompressThreshold, DefaultPreservedTail, nil)

	history := longHistory(20)
	out := comp.Compress(context.Background(), history)

	// system + last 10, no summary message
	is.Equal(len(out), 11)
	is.Equal(out[0].Content, "persona")
	for _, m := range out[1:] {
		is.True(!strings.HasPrefix(m.Content, "Summary of the earlier conversation:"))
	}
}

func TestCompressorWithoutSystemMessage(t *testing.T) {
	is := is.New(t)

	gen := llmfake.NewFakeGenerator()
	comp := NewCompressor(gen, 21, 10, nil)

	history := longHistory(21)[1:] // drop the system message, 21 turn messages
	out := comp.Compress(context.Background(), history)

	// summary + last 10
	is.Equal(len(out), 11)
	is.Equal(out[0].Role, RoleSystem)
	is.True(strings.HasPrefix(out[0].Content, "Summary of the earlier conversation: "))
}

func TestTranscribeHistorySkipsSystemMessages(t *testing.T) {
	is := is.New(t)

	transcript := transcribeHistory([]Message{
		{Role: RoleSystem, Content: "persona"},
		{Role: RoleUser, Content: "hello there"},
		{Role: RoleAssistant, Content: "hi, how can I help?"},
	})

	is.Equal(transcript, "User: hello there\nAssistant: hi, how can I help?\n")
}
