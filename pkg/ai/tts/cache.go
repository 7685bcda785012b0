package tts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// AudioCache stores synthesized audio keyed by a digest of the request.
// Implementations must be safe for concurrent use; both Get and Put are
// best-effort (a failing cache never fails a turn).
type AudioCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, audio []byte)
}

// WithCache wraps a Synthesizer with an AudioCache. Identical requests
// (same text, voice and prosody instructions) reuse the cached payload,
// which matters for repeated short phrases like greetings and fillers.
func WithCache(s Synthesizer, c AudioCache) Synthesizer {
	return &cachingSynthesizer{next: s, cache: c}
}

type cachingSynthesizer struct {
	next  Synthesizer
	cache AudioCache
}

func (cs *cachingSynthesizer) Synthesize(ctx context.Context, req SynthesizeRequest) ([]byte, error) {
	key := CacheKey(req)
	if audio, ok := cs.cache.Get(ctx, key); ok {
		return audio, nil
	}
	audio, err := cs.next.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}
	cs.cache.Put(ctx, key, audio)
	return audio, nil
}

// CacheKey derives the cache key for a synthesis request.
func CacheKey(req SynthesizeRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Text))
	h.Write([]byte{0})
	h.Write([]byte(req.Voice))
	h.Write([]byte{0})
	h.Write([]byte(req.Instructions))
	return hex.EncodeToString(h.Sum(nil))
}
