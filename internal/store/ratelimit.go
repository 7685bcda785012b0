package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimits configures the per-session sliding windows.
type RateLimits struct {
	PerMinute int
	PerHour   int
}

// DefaultRateLimits matches the deployed production budget.
func DefaultRateLimits() RateLimits {
	return RateLimits{PerMinute: 15, PerHour: 200}
}

// RedisRateLimiter implements sliding-window rate limiting with sorted sets,
// one minute window and one hour window per session. Over-limit is the safe
// answer only in one direction: a Redis failure lets the request through
// rather than blocking conversation.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	limits RateLimits
}

// NewRedisRateLimiter creates a limiter sharing an existing client.
func NewRedisRateLimiter(client *redis.Client, prefix string, limits RateLimits) *RedisRateLimiter {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisRateLimiter{client: client, prefix: prefix, limits: limits}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, id string) bool {
	now := time.Now()
	nowScore := float64(now.UnixMilli())
	minuteKey := l.prefix + "rl:m:" + id
	hourKey := l.prefix + "rl:h:" + id

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, minuteKey, "0", strconv.FormatInt(now.Add(-time.Minute).UnixMilli(), 10))
	pipe.ZRemRangeByScore(ctx, hourKey, "0", strconv.FormatInt(now.Add(-time.Hour).UnixMilli(), 10))
	minuteCount := pipe.ZCard(ctx, minuteKey)
	hourCount := pipe.ZCard(ctx, hourKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return true
	}

	if int(minuteCount.Val()) >= l.limits.PerMinute || int(hourCount.Val()) >= l.limits.PerHour {
		return false
	}

	member := strconv.FormatInt(now.UnixNano(), 10)
	record := l.client.Pipeline()
	record.ZAdd(ctx, minuteKey, redis.Z{Score: nowScore, Member: member})
	record.ZAdd(ctx, hourKey, redis.Z{Score: nowScore, Member: member})
	record.Expire(ctx, minuteKey, time.Minute)
	record.Expire(ctx, hourKey, time.Hour)
	_, _ = record.Exec(ctx)
	return true
}

// MemoryRateLimiter is the in-memory sliding-window fallback.
type MemoryRateLimiter struct {
	mu       sync.Mutex
	limits   RateLimits
	attempts map[string][]time.Time
}

// NewMemoryRateLimiter creates an in-memory limiter.
func NewMemoryRateLimiter(limits RateLimits) *MemoryRateLimiter {
	return &MemoryRateLimiter{limits: limits, attempts: make(map[string][]time.Time)}
}

func (l *MemoryRateLimiter) Allow(ctx context.Context, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	kept := l.attempts[id][:0]
	for _, t := range l.attempts[id] {
		if now.Sub(t) < time.Hour {
			kept = append(kept, t)
		}
	}
	l.attempts[id] = kept

	if len(kept) >= l.limits.PerHour {
		return false
	}
	recentMinute := 0
	for _, t := range kept {
		if now.Sub(t) < time.Minute {
			recentMinute++
		}
	}
	if recentMinute >= l.limits.PerMinute {
		return false
	}

	l.attempts[id] = append(kept, now)
	return true
}

// Forget clears rate-limit state for a session.
func (l *MemoryRateLimiter) Forget(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, id)
}
