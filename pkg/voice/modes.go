package voice

import (
	"fmt"
	"strings"
)

// Mode selects the conversation persona.
type Mode string

const (
	ModeInterview        Mode = "interview"
	ModeLanguagePractice Mode = "language"
	ModeFreeChat         Mode = "general"
)

// ParseMode validates a wire-format mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeInterview:
		return ModeInterview, nil
	case ModeLanguagePractice:
		return ModeLanguagePractice, nil
	case ModeFreeChat:
		return ModeFreeChat, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// SupportedLanguages maps the 13 supported practice language tags to their
// display names, used to fill the language persona template.
var SupportedLanguages = map[string]string{
	"en": "English", "es": "Spanish", "fr": "French",
	"de": "German", "zh": "Chinese", "hi": "Hindi",
	"ja": "Japanese", "ko": "Korean", "pt": "Portuguese",
	"ar": "Arabic", "ru": "Russian", "it": "Italian",
	"nl": "Dutch",
}

// ModeProfile is the static per-mode configuration: persona prompt,
// synthesis voice, generation limits. Read-only after startup.
type ModeProfile struct {
	Mode          Mode    `yaml:"mode"`
	PersonaPrompt string  `yaml:"persona_prompt"`
	Voice         string  `yaml:"voice"`
	MaxTokens     int     `yaml:"max_tokens"`
	Temperature   float32 `yaml:"temperature"`

	// Instructions is the base prosody directive for this persona; the
	// per-chunk tone directive is appended to it.
	Instructions string `yaml:"instructions"`

	// Greet indicates the persona opens the conversation (interview and
	// language practice speak first; free chat waits for the user).
	Greet bool `yaml:"greet"`
}

const interviewPrompt = `You are Alex, a senior engineering manager interviewing a candidate.
Have a natural conversation, not a rapid-fire quiz: react to answers, build on them,
share quick real-world examples, and weave feedback into the dialogue instead of grading.
Mix system design, coding, behavioral and infrastructure topics, and sometimes dig deeper
into the candidate's last answer. Keep each turn to 2-4 conversational sentences.
If the user's message starts with [INTERRUPTED], they cut you off mid-answer: ignore your
unfinished response entirely and reply to what they actually said, without acknowledging
the interruption. Start by introducing yourself warmly and asking your first question.`

const languagePromptTemplate = `You are a native %s speaker having a relaxed conversation with
someone practicing their %s. You are a conversation partner, not a teacher: keep the
conversation flowing, correct mistakes casually mid-sentence the way a friend would, and
occasionally offer a useful native expression. Ask follow-up questions about what they said.
If the user's message starts with [INTERRUPTED], ignore your unfinished response and reply
naturally to what they said. Keep responses to 2-3 sentences and always respond in %s.`

const freeChatPrompt = `You are a friendly, helpful assistant. Talk naturally, like a smart
colleague: casual but knowledgeable, contractions, concise. Always react to what the user
actually says; if they say "wait" or "stop", acknowledge and pause.
If the user's message starts with [INTERRUPTED], they cut you off while you were speaking:
completely ignore your previous unfinished response and just reply to their message,
without acknowledging the interruption. Keep responses to 2-3 sentences unless asked for
detail, and respond in the language the user speaks.`

const interviewInstructions = `Speak like a real person talking to someone they like, not a
narrator. Natural hesitations, varied rhythm, warm and low-key. Don't perform.`

const languageInstructions = `Talk the way a native speaker talks to a friend: casual,
natural flow and rhythm, no artificial slowing or over-pronouncing. Warm and patient.`

const freeChatInstructions = `Just a normal person having a conversation. Relaxed, warm,
natural rhythm. Don't project or perform.`

// Profiles holds the loaded mode profiles.
type Profiles struct {
	byMode map[Mode]ModeProfile
}

// DefaultProfiles returns the built-in mode profiles.
func DefaultProfiles() *Profiles {
	return &Profiles{byMode: map[Mode]ModeProfile{
		ModeInterview: {
			Mode:          ModeInterview,
			PersonaPrompt: interviewPrompt,
			Voice:         "ash",
			MaxTokens:     300,
			Temperature:   0.85,
			Instructions:  interviewInstructions,
			Greet:         true,
		},
		ModeLanguagePractice: {
			Mode:          ModeLanguagePractice,
			PersonaPrompt: languagePromptTemplate,
			Voice:         "nova",
			MaxTokens:     200,
			Temperature:   0.85,
			Instructions:  languageInstructions,
			Greet:         true,
		},
		ModeFreeChat: {
			Mode:          ModeFreeChat,
			PersonaPrompt: freeChatPrompt,
			Voice:         "ash",
			MaxTokens:     150,
			Temperature:   0.85,
			Instructions:  freeChatInstructions,
			Greet:         false,
		},
	}}
}

// Get returns the profile for a mode.
func (p *Profiles) Get(mode Mode) (ModeProfile, bool) {
	prof, ok := p.byMode[mode]
	return prof, ok
}

// Override replaces fields of a mode's profile with any non-zero fields of
// the given profile. Used by the optional YAML profile file.
func (p *Profiles) Override(o ModeProfile) {
	prof, ok := p.byMode[o.Mode]
	if !ok {
		return
	}
	if o.PersonaPrompt != "" {
		prof.PersonaPrompt = o.PersonaPrompt
	}
	if o.Voice != "" {
		prof.Voice = o.Voice
	}
	if o.MaxTokens > 0 {
		prof.MaxTokens = o.MaxTokens
	}
	if o.Temperature > 0 {
		prof.Temperature = o.Temperature
	}
	if o.Instructions != "" {
		prof.Instructions = o.Instructions
	}
	p.byMode[o.Mode] = prof
}

// PersonaFor renders the persona prompt for a mode, filling in the practice
// language for language mode.
func (p *Profiles) PersonaFor(mode Mode, language string) string {
	prof, ok := p.byMode[mode]
	if !ok {
		return freeChatPrompt
	}
	if mode == ModeLanguagePractice {
		name, ok := SupportedLanguages[language]
		if !ok {
			name = SupportedLanguages["en"]
		}
		return fmt.Sprintf(prof.PersonaPrompt, name, name, name)
	}
	return prof.PersonaPrompt
}
