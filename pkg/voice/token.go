package voice

import "sync/atomic"

// TurnToken is the cooperative cancellation flag for one generation turn.
// It is created by Session.BeginTurn, set exactly once (by an interrupt or by
// the next turn starting), and polled by the in-flight pipeline at every
// point where non-trivial work is about to begin. Tokens are never reused
// across turns.
type TurnToken struct {
	sessionID string
	cancelled atomic.Bool
}

func newTurnToken(sessionID string) *TurnToken {
	return &TurnToken{sessionID: sessionID}
}

// SessionID returns the id of the session that owns this token.
func (t *TurnToken) SessionID() string {
	return t.sessionID
}

// Cancel sets the cancelled flag. Idempotent and safe from any goroutine.
func (t *TurnToken) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether the turn has been cancelled. Cheap enough to
// poll before and after every provider call.
func (t *TurnToken) Cancelled() bool {
	return t.cancelled.Load()
}
