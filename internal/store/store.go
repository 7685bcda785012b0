// Package store provides the external state collaborators: a session store
// keyed by session id with TTL-based expiry, a sliding-window rate limiter,
// and a cache for synthesized audio. Each has a Redis implementation for
// multi-instance deployments and an in-memory implementation used when no
// Redis is configured.
package store

import "context"

// ErrNotFound is returned by SessionStore.Load for unknown ids.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "session not found" }

// SessionStore persists serialized session records keyed by session id.
// Implementations refresh the TTL on every access.
type SessionStore interface {
	Save(ctx context.Context, id string, data []byte) error
	Load(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// RateLimiter enforces per-session request budgets over sliding windows.
type RateLimiter interface {
	// Allow records an attempt and reports whether it is within budget.
	Allow(ctx context.Context, id string) bool
}
