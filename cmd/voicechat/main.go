// Command voicechat runs the voice conversation service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chriscow/voicechat-go/internal/config"
	"github.com/chriscow/voicechat-go/internal/server"
	"github.com/chriscow/voicechat-go/internal/store"
	"github.com/chriscow/voicechat-go/pkg/ai/tts"
	openaiplugin "github.com/chriscow/voicechat-go/pkg/plugin/openai"
	"github.com/chriscow/voicechat-go/pkg/voice"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "voicechat",
		Short: "Real-time voice conversation service",
		Long:  "Low-latency, interruptible voice chat over speech-to-text, language generation and speech synthesis providers",
	}
	rootCmd.AddCommand(newServeCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the websocket service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Address to listen on")
	cmd.Flags().StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL (empty for in-memory stores)")
	cmd.Flags().StringVar(&cfg.ProfileFile, "profiles", cfg.ProfileFile, "YAML mode-profile overrides")
	cmd.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	log := cfg.Logger()
	slog.SetDefault(log)

	profiles, err := cfg.Profiles()
	if err != nil {
		return err
	}

	providers, err := openaiplugin.NewProviders(openaiplugin.Config{
		APIKey:    cfg.OpenAIAPIKey,
		ChatModel: cfg.ChatModel,
		STTModel:  cfg.STTModel,
		TTSModel:  cfg.TTSModel,
	})
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	sessions, limiter, audioCache, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer sessions.Close()

	synthesizer := tts.WithCache(providers.TTS, audioCache)
	pipeline := voice.NewPipeline(providers.STT, providers.LLM, synthesizer, profiles, voice.Config{
		Chunker: voice.ChunkerConfig{
			FirstSentences: cfg.FirstChunkSents,
			GroupSentences: cfg.SubsequentSents,
			MinChars:       cfg.MinChunkChars,
		},
		CompressThreshold: cfg.CompressThreshold,
		PreservedTail:     cfg.PreservedTail,
		ProviderTimeout:   cfg.ProviderTimeout,
	}, log)

	srv := server.New(server.Options{
		Pipeline:      pipeline,
		Profiles:      profiles,
		Sessions:      sessions,
		Limiter:       limiter,
		Logger:        log,
		MaxTextLength: cfg.MaxTextLength,
		MaxAudioSize:  cfg.MaxAudioSize,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", cfg.Addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

// buildStores picks Redis-backed stores when a URL is configured and
// in-memory fallbacks otherwise, matching the deployment's graceful
// degradation: single-instance works with zero external services.
func buildStores(ctx context.Context, cfg config.Config, log *slog.Logger) (store.SessionStore, store.RateLimiter, tts.AudioCache, error) {
	limits := store.RateLimits{PerMinute: cfg.RatePerMinute, PerHour: cfg.RatePerHour}

	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, using in-memory session store (single instance only)")
		return store.NewMemoryStore(cfg.SessionTTL),
			store.NewMemoryRateLimiter(limits),
			store.NewMemoryAudioCache(cfg.TTSCacheSize),
			nil
	}

	redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.SessionTTL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("redis: %w", err)
	}
	log.Info("connected to redis")
	return redisStore,
		store.NewRedisRateLimiter(redisStore.Client(), cfg.RedisPrefix, limits),
		store.NewRedisAudioCache(redisStore.Client(), cfg.RedisPrefix),
		nil
}
