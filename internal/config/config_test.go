package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/chriscow/voicechat-go/pkg/voice"
)

func TestLoadDefaults(t *testing.T) {
	is := is.New(t)

	cfg := Load()

	is.Equal(cfg.Addr, ":8080")
	is.Equal(cfg.ChatModel, "gpt-4o-mini")
	is.Equal(cfg.STTModel, "whisper-1")
	is.Equal(cfg.TTSModel, "gpt-4o-mini-tts")
	is.Equal(cfg.SessionTTL, 2*time.Hour)
	is.Equal(cfg.ProviderTimeout, 30*time.Second)
	is.Equal(cfg.SubsequentSents, 2)
	is.Equal(cfg.MaxTextLength, 2000)
	is.Equal(cfg.MaxAudioSize, 3*1024*1024)
	is.Equal(cfg.RatePerMinute, 15)
	is.Equal(cfg.RatePerHour, 200)
}

func TestLoadFromEnv(t *testing.T) {
	is := is.New(t)

	t.Setenv("ADDR", ":9999")
	t.Setenv("STREAMING_SUBSEQUENT_CHUNK_SENTENCES", "3")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "5")

	cfg := Load()
	is.Equal(cfg.Addr, ":9999")
	is.Equal(cfg.SubsequentSents, 3)
	is.Equal(cfg.ProviderTimeout, 5*time.Second)
}

func TestValidate(t *testing.T) {
	is := is.New(t)

	cfg := Load()
	cfg.OpenAIAPIKey = ""
	is.True(cfg.Validate() != nil)

	cfg.OpenAIAPIKey = "sk-test"
	is.NoErr(cfg.Validate())

	cfg.SubsequentSents = 4
	is.True(cfg.Validate() != nil)
	cfg.SubsequentSents = 0
	is.True(cfg.Validate() != nil)
}

func TestEnvIntBadValueFallsBack(t *testing.T) {
	is := is.New(t)

	t.Setenv("RATE_LIMIT_RPM", "not-a-number")
	cfg := Load()
	is.Equal(cfg.RatePerMinute, 15)
}

func TestProfilesOverrideFile(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := `profiles:
  - mode: interview
    voice: nova
    max_tokens: 400
`
	is.NoErr(os.WriteFile(path, []byte(content), 0o600))

	cfg := Load()
	cfg.ProfileFile = path

	profiles, err := cfg.Profiles()
	is.NoErr(err)

	prof, ok := profiles.Get(voice.ModeInterview)
	is.True(ok)
	is.Equal(prof.Voice, "nova")
	is.Equal(prof.MaxTokens, 400)
}

func TestProfilesMissingFile(t *testing.T) {
	is := is.New(t)

	cfg := Load()
	cfg.ProfileFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := cfg.Profiles()
	is.True(err != nil)
}
