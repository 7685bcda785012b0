package voice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/chriscow/voicechat-go/pkg/ai"
	"github.com/chriscow/voicechat-go/pkg/ai/llm"
	"github.com/chriscow/voicechat-go/pkg/ai/stt"
	"github.com/chriscow/voicechat-go/pkg/ai/tts"
)

// TurnState is the streaming pipeline's state for one turn.
type TurnState int32

const (
	StateIdle TurnState = iota
	StateTranscribing
	StateGenerating
	StateSynthesizing
	StateCompleted
	StateCancelled
	// StateFailed is "completed with error": a provider failure was
	// reported to the transport and the session returned to idle.
	StateFailed
)

func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateTranscribing:
		return "Transcribing"
	case StateGenerating:
		return "Generating"
	case StateSynthesizing:
		return "Synthesizing"
	case StateCompleted:
		return "Completed"
	case StateCancelled:
		return "Cancelled"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// ErrKindProvider is the turn_error kind for any external provider failure
// or timeout.
const ErrKindProvider = "provider_error"

// Emitter is the transport boundary the pipeline emits progressive results
// to. Implementations must preserve call order; the pipeline guarantees
// chunk i is fully emitted before chunk i+1 is synthesized.
type Emitter interface {
	Status(message string)
	PartialText(text string)
	AudioChunk(index int, audio []byte)
	TurnComplete()
	TurnCancelled()
	TurnError(kind, message string)
}

// Utterance is one inbound user turn: either text or audio bytes.
type Utterance struct {
	Text     string
	Audio    []byte
	MIMEType string

	// Interrupted marks an utterance that cut off the assistant mid-reply.
	Interrupted bool
}

// Config tunes the pipeline.
type Config struct {
	Chunker           ChunkerConfig
	CompressThreshold int
	PreservedTail     int

	// ProviderTimeout bounds every external call; a timeout is treated
	// identically to a provider failure.
	ProviderTimeout time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Chunker:           DefaultChunkerConfig(),
		CompressThreshold: DefaultCompressThreshold,
		PreservedTail:     DefaultPreservedTail,
		ProviderTimeout:   30 * time.Second,
	}
}

// Pipeline orchestrates one session turn: transcription if the input was
// audio, streamed generation, sentence chunking, tone-parameterized
// synthesis, and strictly ordered emission, all under the session's
// cancellation token. No provider error escapes RunTurn; every outcome is
// reported through the Emitter.
type Pipeline struct {
	stt        stt.Transcriber
	gen        llm.Generator
	tts        tts.Synthesizer
	profiles   *Profiles
	compressor *Compressor
	cfg        Config
	metrics    *Metrics
	log        *slog.Logger
}

// NewPipeline wires a pipeline from its providers.
func NewPipeline(transcriber stt.Transcriber, generator llm.Generator, synthesizer tts.Synthesizer, profiles *Profiles, cfg Config, log *slog.Logger) *Pipeline {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 30 * time.Second
	}
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		stt:        transcriber,
		gen:        generator,
		tts:        synthesizer,
		profiles:   profiles,
		compressor: NewCompressor(generator, cfg.CompressThreshold, cfg.PreservedTail, log),
		cfg:        cfg,
		metrics:    NewMetrics(),
		log:        log,
	}
}

// Metrics exposes the pipeline's counters.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// whisperNoise lists transcripts Whisper hallucinates on silence or
// background noise; they are dropped rather than answered.
var whisperNoise = map[string]struct{}{
	"thank you": {}, "thanks for watching": {}, "bye": {}, "you": {},
	"the end": {}, "thanks": {}, "thank you for watching": {},
	"subtitles by": {}, "music": {}, "silence": {}, "applause": {},
}

func isNoiseTranscript(text string) bool {
	normalized := strings.TrimRight(strings.ToLower(strings.TrimSpace(text)), ".!,")
	_, ok := whisperNoise[normalized]
	return ok
}

// RunTurn processes one user utterance end to end and returns the terminal
// state. It is intended to run on its own goroutine, one per session turn.
func (p *Pipeline) RunTurn(ctx context.Context, sess *Session, utt Utterance, emit Emitter) TurnState {
	tok := sess.BeginTurn()
	defer sess.EndTurn(tok)
	p.metrics.TurnsStarted.Add(1)

	text := utt.Text
	if len(utt.Audio) > 0 {
		start := time.Now()
		transcript, err := p.transcribe(ctx, sess, utt)
		p.metrics.recordStage("stt", time.Since(start).Milliseconds())

		// A cancellation during transcription discards the transcript;
		// nothing was generated, so nothing reaches the history.
		if tok.Cancelled() {
			emit.TurnCancelled()
			p.metrics.TurnsCancelled.Add(1)
			return StateCancelled
		}
		if err != nil {
			return p.fail(emit, err)
		}
		if strings.TrimSpace(transcript) == "" || isNoiseTranscript(transcript) {
			emit.Status("Could not hear you clearly. Please try again.")
			return StateIdle
		}
		text = transcript
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return StateIdle
	}

	// The persona prompt knows how to pick up after being cut off; the
	// prefix tells it this message did exactly that.
	if utt.Interrupted {
		text = "[INTERRUPTED] " + text
		p.metrics.Interruptions.Add(1)
	}

	if sess.Mode() == "" {
		sess.StartMode(ModeFreeChat, "", p.profiles.PersonaFor(ModeFreeChat, ""))
	}

	sess.Append(Message{Role: RoleUser, Content: text, Interrupted: utt.Interrupted})
	p.compressIfNeeded(ctx, sess)

	return p.respond(ctx, sess, tok, emit)
}

// RunGreeting has the persona open the conversation: one generation turn
// from just the system prompt, spoken like any other response. Used right
// after start_mode for personas that speak first.
func (p *Pipeline) RunGreeting(ctx context.Context, sess *Session, emit Emitter) TurnState {
	tok := sess.BeginTurn()
	defer sess.EndTurn(tok)
	p.metrics.TurnsStarted.Add(1)

	return p.respond(ctx, sess, tok, emit)
}

func (p *Pipeline) transcribe(ctx context.Context, sess *Session, utt Utterance) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, p.cfg.ProviderTimeout)
	defer cancel()
	return p.stt.Transcribe(tctx, stt.Request{
		Audio:    utt.Audio,
		MIMEType: utt.MIMEType,
		Language: sess.Language(),
	})
}

func (p *Pipeline) compressIfNeeded(ctx context.Context, sess *Session) {
	history := sess.History()
	if len(history) < p.compressor.threshold {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, p.cfg.ProviderTimeout)
	defer cancel()

	compressed := p.compressor.Compress(cctx, history)
	if len(compressed) < len(history) {
		sess.SetHistory(compressed)
		p.metrics.CompressionsRun.Add(1)
	}
}

// respond drives Generating and the interleaved Synthesizing/Emitting
// sub-steps until the provider signals end-of-stream, the token is
// cancelled, or a provider fails.
func (p *Pipeline) respond(ctx context.Context, sess *Session, tok *TurnToken, emit Emitter) TurnState {
	prof, ok := p.profiles.Get(sess.Mode())
	if !ok {
		prof, _ = p.profiles.Get(ModeFreeChat)
	}

	genCtx, cancel := context.WithTimeout(ctx, p.cfg.ProviderTimeout)
	defer cancel()

	genStart := time.Now()
	stream, err := p.gen.GenerateStream(genCtx, llm.GenerateRequest{
		Messages:    toLLMMessages(sess.History()),
		MaxTokens:   prof.MaxTokens,
		Temperature: prof.Temperature,
	})
	if err != nil {
		return p.fail(emit, err)
	}
	defer stream.Close()

	chunker := NewChunker(p.cfg.Chunker)
	var assembled strings.Builder
	chunkIndex := 0
	turnStart := time.Now()

	for {
		// Poll point: before requesting the next fragment.
		if tok.Cancelled() {
			return p.cancelled(sess, assembled.String(), emit)
		}

		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return p.fail(emit, err)
		}
		assembled.WriteString(frag)

		for _, chunkText := range chunker.Write(frag) {
			if err := p.speakChunk(ctx, sess, tok, prof, chunkText, chunkIndex, turnStart, emit); err != nil {
				if ai.IsCancelled(err) {
					return p.cancelled(sess, assembled.String(), emit)
				}
				return p.fail(emit, err)
			}
			chunkIndex++
		}
	}
	p.metrics.recordStage("llm", time.Since(genStart).Milliseconds())

	if tok.Cancelled() {
		return p.cancelled(sess, assembled.String(), emit)
	}

	// End-of-stream: whatever remains is the final chunk, sentence-complete
	// or not.
	if final := chunker.Flush(); strings.TrimSpace(final) != "" {
		if err := p.speakChunk(ctx, sess, tok, prof, final, chunkIndex, turnStart, emit); err != nil {
			if ai.IsCancelled(err) {
				return p.cancelled(sess, assembled.String(), emit)
			}
			return p.fail(emit, err)
		}
	}

	if reply := strings.TrimSpace(assembled.String()); reply != "" {
		sess.Append(Message{Role: RoleAssistant, Content: reply})
	}
	emit.TurnComplete()
	p.metrics.TurnsCompleted.Add(1)
	return StateCompleted
}

// speakChunk classifies tone, synthesizes one chunk and emits it, polling
// the token before the synthesis call and again before emission so an
// in-flight result is discarded rather than emitted after an interrupt.
func (p *Pipeline) speakChunk(ctx context.Context, sess *Session, tok *TurnToken, prof ModeProfile, text string, index int, turnStart time.Time, emit Emitter) error {
	if tok.Cancelled() {
		return ai.ErrCancelled
	}

	tone := ClassifyTone(sess.History())
	start := time.Now()

	sctx, cancel := context.WithTimeout(ctx, p.cfg.ProviderTimeout)
	audio, err := p.tts.Synthesize(sctx, tts.SynthesizeRequest{
		Text:         strings.TrimSpace(text),
		Voice:        prof.Voice,
		Instructions: prof.Instructions + " " + tone.Directive(),
	})
	cancel()
	p.metrics.recordStage("tts", time.Since(start).Milliseconds())
	if err != nil {
		return err
	}
	if tok.Cancelled() {
		return ai.ErrCancelled
	}

	emit.PartialText(text)
	emit.AudioChunk(index, audio)

	if index == 0 {
		p.metrics.FirstAudioLatency.Set(float64(time.Since(turnStart).Milliseconds()))
	}
	p.metrics.ChunksEmitted.Add(1)

	p.log.Debug("chunk emitted",
		slog.String("session", sess.ID),
		slog.Int("index", index),
		slog.String("tone", string(tone)),
		slog.Int("audio_bytes", len(audio)))
	return nil
}

func (p *Pipeline) cancelled(sess *Session, assembled string, emit Emitter) TurnState {
	if partial := strings.TrimSpace(assembled); partial != "" {
		sess.Append(Message{Role: RoleAssistant, Content: partial, Interrupted: true})
	}
	emit.TurnCancelled()
	p.metrics.TurnsCancelled.Add(1)
	p.log.Info("turn cancelled", slog.String("session", sess.ID))
	return StateCancelled
}

func (p *Pipeline) fail(emit Emitter, err error) TurnState {
	p.log.Error("turn failed", slog.String("error", err.Error()))
	emit.TurnError(ErrKindProvider, err.Error())
	p.metrics.TurnErrors.Add(1)
	return StateFailed
}

func toLLMMessages(history []Message) []llm.Message {
	out := make([]llm.Message, len(history))
	for i, m := range history {
		out[i] = llm.Message{Role: llm.MessageRole(m.Role), Content: m.Content}
	}
	return out
}
