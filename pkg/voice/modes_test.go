package voice

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestParseMode(t *testing.T) {
	is := is.New(t)

	mode, err := ParseMode("interview")
	is.NoErr(err)
	is.Equal(mode, ModeInterview)

	mode, err = ParseMode("  General ")
	is.NoErr(err)
	is.Equal(mode, ModeFreeChat)

	_, err = ParseMode("karaoke")
	is.True(err != nil)
}

func TestPersonaForLanguageMode(t *testing.T) {
	is := is.New(t)

	profiles := DefaultProfiles()

	persona := profiles.PersonaFor(ModeLanguagePractice, "es")
	is.True(strings.Contains(persona, "Spanish"))
	is.True(!strings.Contains(persona, "%s"))

	// Unknown language tags fall back to English.
	persona = profiles.PersonaFor(ModeLanguagePractice, "xx")
	is.True(strings.Contains(persona, "English"))
}

func TestPersonaForNonLanguageModes(t *testing.T) {
	is := is.New(t)

	profiles := DefaultProfiles()
	is.Equal(profiles.PersonaFor(ModeInterview, ""), interviewPrompt)
	is.Equal(profiles.PersonaFor(ModeFreeChat, "fr"), freeChatPrompt)
	is.Equal(profiles.PersonaFor(Mode("bogus"), ""), freeChatPrompt)
}

func TestProfilesOverride(t *testing.T) {
	is := is.New(t)

	profiles := DefaultProfiles()
	profiles.Override(ModeProfile{
		Mode:      ModeInterview,
		Voice:     "nova",
		MaxTokens: 500,
	})

	prof, ok := profiles.Get(ModeInterview)
	is.True(ok)
	is.Equal(prof.Voice, "nova")
	is.Equal(prof.MaxTokens, 500)
	// Untouched fields keep their defaults.
	is.Equal(prof.PersonaPrompt, interviewPrompt)
	is.True(prof.Greet)

	// Overrides for unknown modes are ignored.
	profiles.Override(ModeProfile{Mode: Mode("bogus"), Voice: "echo"})
	_, ok = profiles.Get(Mode("bogus"))
	is.True(!ok)
}

func TestDefaultProfilesGreeting(t *testing.T) {
	is := is.New(t)

	profiles := DefaultProfiles()

	interview, _ := profiles.Get(ModeInterview)
	language, _ := profiles.Get(ModeLanguagePractice)
	freechat, _ := profiles.Get(ModeFreeChat)

	is.True(interview.Greet)
	is.True(language.Greet)
	is.True(!freechat.Greet)
}
