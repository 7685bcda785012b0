package tts

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"
)

type mapCache struct {
	entries map[string][]byte
	gets    int
	puts    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.gets++
	audio, ok := c.entries[key]
	return audio, ok
}

func (c *mapCache) Put(ctx context.Context, key string, audio []byte) {
	c.puts++
	c.entries[key] = audio
}

type countingSynth struct {
	calls int
	err   error
}

func (s *countingSynth) Synthesize(ctx context.Context, req SynthesizeRequest) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte("audio:" + req.Text), nil
}

func TestWithCacheHitSkipsSynthesis(t *testing.T) {
	is := is.New(t)

	synth := &countingSynth{}
	cache := newMapCache()
	cached := WithCache(synth, cache)

	req := SynthesizeRequest{Text: "Hello!", Voice: "ash", Instructions: "warm"}

	audio, err := cached.Synthesize(context.Background(), req)
	is.NoErr(err)
	is.Equal(string(audio), "audio:Hello!")
	is.Equal(synth.calls, 1)
	is.Equal(cache.puts, 1)

	audio, err = cached.Synthesize(context.Background(), req)
	is.NoErr(err)
	is.Equal(string(audio), "audio:Hello!")
	is.Equal(synth.calls, 1) // second request served from cache
}

func TestWithCacheErrorNotCached(t *testing.T) {
	is := is.New(t)

	synth := &countingSynth{err: errors.New("unavailable")}
	cache := newMapCache()
	cached := WithCache(synth, cache)

	_, err := cached.Synthesize(context.Background(), SynthesizeRequest{Text: "x"})
	is.True(err != nil)
	is.Equal(cache.puts, 0)
}

func TestCacheKeyDistinguishesFields(t *testing.T) {
	is := is.New(t)

	base := SynthesizeRequest{Text: "hi", Voice: "ash", Instructions: "calm"}
	is.Equal(CacheKey(base), CacheKey(base))

	variants := []SynthesizeRequest{
		{Text: "hi!", Voice: "ash", Instructions: "calm"},
		{Text: "hi", Voice: "nova", Instructions: "calm"},
		{Text: "hi", Voice: "ash", Instructions: "upbeat"},
		// Field contents must not bleed across the separator.
		{Text: "hia", Voice: "sh", Instructions: "calm"},
	}
	for _, v := range variants {
		is.True(CacheKey(v) != CacheKey(base))
	}
}
