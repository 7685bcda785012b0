// Package config loads service configuration from environment variables
// with sensible defaults, plus optional mode-profile overrides from a YAML
// file. Missing provider credentials are a startup error, never per-turn.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/chriscow/voicechat-go/pkg/voice"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	// Server
	Addr string

	// OpenAI
	OpenAIAPIKey string
	ChatModel    string
	STTModel     string
	TTSModel     string

	// Redis (empty URL means in-memory stores)
	RedisURL    string
	RedisPrefix string
	SessionTTL  time.Duration

	// Pipeline
	ProviderTimeout    time.Duration
	FirstChunkSents    int
	SubsequentSents    int
	MinChunkChars      int
	CompressThreshold  int
	PreservedTail      int

	// Limits
	MaxTextLength  int
	MaxAudioSize   int
	RatePerMinute  int
	RatePerHour    int
	TTSCacheSize   int

	// Logging
	LogLevel  string
	LogFormat string // json or text

	// ProfileFile optionally overrides built-in mode profiles.
	ProfileFile string
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Addr:         envStr("ADDR", ":8080"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		ChatModel:    envStr("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		STTModel:     envStr("OPENAI_STT_MODEL", "whisper-1"),
		TTSModel:     envStr("OPENAI_TTS_MODEL", "gpt-4o-mini-tts"),

		RedisURL:    os.Getenv("REDIS_URL"),
		RedisPrefix: envStr("REDIS_PREFIX", "voicechat:"),
		SessionTTL:  time.Duration(envInt("REDIS_SESSION_TTL", 7200)) * time.Second,

		ProviderTimeout:   time.Duration(envInt("PROVIDER_TIMEOUT_SECONDS", 30)) * time.Second,
		FirstChunkSents:   envInt("STREAMING_FIRST_CHUNK_SENTENCES", 1),
		SubsequentSents:   envInt("STREAMING_SUBSEQUENT_CHUNK_SENTENCES", 2),
		MinChunkChars:     envInt("STREAMING_MIN_CHUNK_CHARS", 12),
		CompressThreshold: envInt("MEMORY_COMPRESSION_THRESHOLD", voice.DefaultCompressThreshold),
		PreservedTail:     envInt("MEMORY_PRESERVED_TAIL", voice.DefaultPreservedTail),

		MaxTextLength: envInt("MAX_TEXT_LENGTH", 2000),
		MaxAudioSize:  envInt("MAX_AUDIO_SIZE", 3*1024*1024),
		RatePerMinute: envInt("RATE_LIMIT_RPM", 15),
		RatePerHour:   envInt("RATE_LIMIT_RPH", 200),
		TTSCacheSize:  envInt("TTS_CACHE_MAX_SIZE", 200),

		LogLevel:    envStr("LOG_LEVEL", "info"),
		LogFormat:   envStr("LOG_FORMAT", "text"),
		ProfileFile: os.Getenv("MODE_PROFILE_FILE"),
	}
}

// Validate fails fast on configuration the service cannot run without.
func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.SubsequentSents < 1 || c.SubsequentSents > 3 {
		return fmt.Errorf("STREAMING_SUBSEQUENT_CHUNK_SENTENCES must be 1-3, got %d", c.SubsequentSents)
	}
	return nil
}

// Logger builds the slog logger described by the config.
func (c Config) Logger() *slog.Logger {
	var level slog.Level
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// Profiles returns the mode profiles, applying YAML overrides when a
// profile file is configured.
func (c Config) Profiles() (*voice.Profiles, error) {
	profiles := voice.DefaultProfiles()
	if c.ProfileFile == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(c.ProfileFile)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	var overrides struct {
		Profiles []voice.ModeProfile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing profile file: %w", err)
	}
	for _, o := range overrides.Profiles {
		profiles.Override(o)
	}
	return profiles, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
