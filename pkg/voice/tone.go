package voice

import "strings"

// Tone is one of a fixed, closed set of emotional tones used to parameterize
// synthesis for the next chunk.
type Tone string

const (
	ToneEmpathetic   Tone = "empathetic"
	ToneEnthusiastic Tone = "enthusiastic"
	ToneCurious      Tone = "curious"
	ToneSerious      Tone = "serious"
	ToneEncouraging  Tone = "encouraging"
	ToneNeutral      Tone = "neutral"
)

// toneCues are lexical patterns checked in priority order. First match wins,
// which keeps classification deterministic for identical input.
var toneCues = []struct {
	tone Tone
	cues []string
}{
	{ToneEmpathetic, []string{
		"sorry", "sad", "upset", "stressed", "worried", "nervous", "anxious",
		"frustrated", "scared", "tired", "difficult for me", "struggling",
	}},
	{ToneSerious, []string{
		"problem", "error", "failed", "failure", "broken", "deadline",
		"urgent", "critical", "outage", "bug",
	}},
	{ToneEncouraging, []string{
		"i don't know", "not sure", "i can't", "i give up", "too hard",
		"trying to learn", "still learning", "practice",
	}},
	{ToneEnthusiastic, []string{
		"awesome", "amazing", "great news", "excited", "love it", "love this",
		"fantastic", "so cool", "can't wait",
	}},
}

// ClassifyTone maps the recent message history to a tone label. It is a pure
// function of its input: rule-based matching over the latest user message,
// no provider calls, no hidden state.
func ClassifyTone(history []Message) Tone {
	var latest string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			latest = history[i].Content
			break
		}
	}
	if latest == "" {
		return ToneNeutral
	}

	text := strings.ToLower(latest)
	for _, entry := range toneCues {
		for _, cue := range entry.cues {
			if strings.Contains(text, cue) {
				return entry.tone
			}
		}
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, "?") ||
		strings.HasPrefix(trimmed, "what") || strings.HasPrefix(trimmed, "how") ||
		strings.HasPrefix(trimmed, "why") || strings.HasPrefix(trimmed, "tell me") {
		return ToneCurious
	}
	return ToneNeutral
}

// toneDirectives maps each tone to a short natural-language prosody
// directive appended to the synthesis request. Static configuration, not
// part of the classifier contract.
var toneDirectives = map[Tone]string{
	ToneEmpathetic:   "Speak gently and warmly, slow down a little, soften your voice.",
	ToneEnthusiastic: "Sound genuinely excited and upbeat, a bit faster, smiling.",
	ToneCurious:      "Sound curious and engaged, with a slight rise in intonation.",
	ToneSerious:      "Keep a calm, measured, focused delivery.",
	ToneEncouraging:  "Sound supportive and patient, reassuring without being saccharine.",
	ToneNeutral:      "Speak naturally and conversationally.",
}

// Directive returns the prosody directive for the tone.
func (t Tone) Directive() string {
	if d, ok := toneDirectives[t]; ok {
		return d
	}
	return toneDirectives[ToneNeutral]
}
