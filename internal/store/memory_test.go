package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestMemoryStoreSaveLoadDelete(t *testing.T) {
	is := is.New(t)

	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	is.True(errors.Is(err, ErrNotFound))

	is.NoErr(s.Save(ctx, "s1", []byte(`{"id":"s1"}`)))
	data, err := s.Load(ctx, "s1")
	is.NoErr(err)
	is.Equal(string(data), `{"id":"s1"}`)
	is.Equal(s.Len(), 1)

	is.NoErr(s.Delete(ctx, "s1"))
	_, err = s.Load(ctx, "s1")
	is.True(errors.Is(err, ErrNotFound))
}

func TestMemoryStoreExpiry(t *testing.T) {
	is := is.New(t)

	s := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	is.NoErr(s.Save(ctx, "s1", []byte("data")))
	time.Sleep(25 * time.Millisecond)

	_, err := s.Load(ctx, "s1")
	is.True(errors.Is(err, ErrNotFound))
	is.Equal(s.Len(), 0) // lazy expiry removed the entry
}

func TestMemoryStoreSweep(t *testing.T) {
	is := is.New(t)

	s := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	is.NoErr(s.Save(ctx, "a", []byte("1")))
	is.NoErr(s.Save(ctx, "b", []byte("2")))
	time.Sleep(25 * time.Millisecond)
	is.NoErr(s.Save(ctx, "c", []byte("3")))

	is.Equal(s.Sweep(), 2)
	is.Equal(s.Len(), 1)
}

func TestMemoryRateLimiterMinuteWindow(t *testing.T) {
	is := is.New(t)

	l := NewMemoryRateLimiter(RateLimits{PerMinute: 3, PerHour: 100})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		is.True(l.Allow(ctx, "s1"))
	}
	is.True(!l.Allow(ctx, "s1"))

	// Limits are per session.
	is.True(l.Allow(ctx, "s2"))

	l.Forget("s1")
	is.True(l.Allow(ctx, "s1"))
}

func TestMemoryRateLimiterHourWindow(t *testing.T) {
	is := is.New(t)

	l := NewMemoryRateLimiter(RateLimits{PerMinute: 100, PerHour: 5})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		is.True(l.Allow(ctx, "s1"))
	}
	is.True(!l.Allow(ctx, "s1"))
}

func TestMemoryAudioCacheEviction(t *testing.T) {
	is := is.New(t)

	c := NewMemoryAudioCache(2)
	ctx := context.Background()

	c.Put(ctx, "a", []byte("audio-a"))
	c.Put(ctx, "b", []byte("audio-b"))

	// Touch "a" so "b" is the least recently used.
	_, ok := c.Get(ctx, "a")
	is.True(ok)

	c.Put(ctx, "c", []byte("audio-c"))
	is.Equal(c.Len(), 2)

	_, ok = c.Get(ctx, "b")
	is.True(!ok) // evicted
	audio, ok := c.Get(ctx, "a")
	is.True(ok)
	is.Equal(string(audio), "audio-a")
	_, ok = c.Get(ctx, "c")
	is.True(ok)
}

func TestMemoryAudioCacheMiss(t *testing.T) {
	is := is.New(t)

	c := NewMemoryAudioCache(0) // zero falls back to the default bound
	_, ok := c.Get(context.Background(), "nope")
	is.True(!ok)
}

func TestDefaultRateLimits(t *testing.T) {
	is := is.New(t)

	limits := DefaultRateLimits()
	is.Equal(limits.PerMinute, 15)
	is.Equal(limits.PerHour, 200)
}
