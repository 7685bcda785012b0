package voice

import (
	"testing"

	"github.com/matryer/is"
)

func TestClassifyTone(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Tone
	}{
		{"empathetic", "I'm sorry, this week has been really stressful", ToneEmpathetic},
		{"serious", "The deploy failed and we have an outage", ToneSerious},
		{"encouraging", "I don't know if I can get this right", ToneEncouraging},
		{"enthusiastic", "That's awesome, I love it!", ToneEnthusiastic},
		{"curious question mark", "So how does garbage collection actually work?", ToneCurious},
		{"curious prefix", "tell me about your last project", ToneCurious},
		{"neutral", "Let's move on to the next topic.", ToneNeutral},
		{"priority empathetic over enthusiastic", "I'm worried but also excited", ToneEmpathetic},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			history := []Message{
				{Role: RoleSystem, Content: "persona"},
				{Role: RoleUser, Content: tc.text},
			}
			is.Equal(ClassifyTone(history), tc.want)
		})
	}
}

func TestClassifyToneUsesLatestUserMessage(t *testing.T) {
	is := is.New(t)

	history := []Message{
		{Role: RoleUser, Content: "That's awesome!"},
		{Role: RoleAssistant, Content: "Glad to hear it."},
		{Role: RoleUser, Content: "Actually I'm pretty worried now"},
	}
	is.Equal(ClassifyTone(history), ToneEmpathetic)
}

func TestClassifyToneNoUserMessage(t *testing.T) {
	is := is.New(t)

	is.Equal(ClassifyTone(nil), ToneNeutral)
	is.Equal(ClassifyTone([]Message{{Role: RoleSystem, Content: "persona"}}), ToneNeutral)
}

func TestClassifyToneDeterministic(t *testing.T) {
	is := is.New(t)

	history := []Message{{Role: RoleUser, Content: "I give up, this bug is too hard"}}
	first := ClassifyTone(history)
	for i := 0; i < 10; i++ {
		is.Equal(ClassifyTone(history), first)
	}
}

func TestToneDirectiveCoversAllTones(t *testing.T) {
	is := is.New(t)

	tones := []Tone{ToneEmpathetic, ToneEnthusiastic, ToneCurious, ToneSerious, ToneEncouraging, ToneNeutral}
	for _, tone := range tones {
		is.True(tone.Directive() != "")
	}

	// Unknown tones fall back to the neutral directive.
	is.Equal(Tone("melancholy").Directive(), ToneNeutral.Directive())
}
