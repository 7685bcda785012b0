package store

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAudioCache stores synthesized audio in Redis with a one hour TTL,
// refreshed on hit. Implements tts.AudioCache; cache failures are silent by
// contract.
type RedisAudioCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisAudioCache creates an audio cache sharing an existing client.
func NewRedisAudioCache(client *redis.Client, prefix string) *RedisAudioCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisAudioCache{client: client, prefix: prefix, ttl: time.Hour}
}

func (c *RedisAudioCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, c.prefix+"tts:"+key).Bytes()
	if err != nil {
		return nil, false
	}
	_ = c.client.Expire(ctx, c.prefix+"tts:"+key, c.ttl).Err()
	return data, true
}

func (c *RedisAudioCache) Put(ctx context.Context, key string, audio []byte) {
	_ = c.client.Set(ctx, c.prefix+"tts:"+key, audio, c.ttl).Err()
}

// MemoryAudioCache is a bounded in-memory audio cache that evicts the least
// recently used entry once full.
type MemoryAudioCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*memoryAudioEntry
}

type memoryAudioEntry struct {
	audio    []byte
	lastUsed time.Time
}

// NewMemoryAudioCache creates a cache bounded to maxSize entries.
func NewMemoryAudioCache(maxSize int) *MemoryAudioCache {
	if maxSize <= 0 {
		maxSize = 200
	}
	return &MemoryAudioCache{maxSize: maxSize, entries: make(map[string]*memoryAudioEntry)}
}

func (c *MemoryAudioCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry.lastUsed = time.Now()
	return entry.audio, true
}

func (c *MemoryAudioCache) Put(ctx context.Context, key string, audio []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.lastUsed.Before(oldest) {
				oldestKey = k
				oldest = e.lastUsed
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = &memoryAudioEntry{audio: audio, lastUsed: time.Now()}
}

// Len returns the number of cached payloads.
func (c *MemoryAudioCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
