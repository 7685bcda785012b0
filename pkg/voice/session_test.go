package voice

import (
	"testing"

	"github.com/matryer/is"
)

func TestSessionBeginTurnInvalidatesPrior(t *testing.T) {
	is := is.New(t)

	sess := NewSession("s1")
	first := sess.BeginTurn()
	is.True(!first.Cancelled())

	second := sess.BeginTurn()
	is.True(first.Cancelled())   // starting a new turn cancels the one in flight
	is.True(!second.Cancelled()) // the fresh token starts live
}

func TestSessionCancelTurn(t *testing.T) {
	is := is.New(t)

	sess := NewSession("s1")

	// No turn in flight: a no-op that reports nothing was cancelled.
	is.True(!sess.CancelTurn())

	tok := sess.BeginTurn()
	is.True(sess.CancelTurn())
	is.True(tok.Cancelled())

	// Second cancel of the same turn is idempotent.
	is.True(!sess.CancelTurn())
}

func TestSessionEndTurnOnlyClearsCurrent(t *testing.T) {
	is := is.New(t)

	sess := NewSession("s1")
	stale := sess.BeginTurn()
	current := sess.BeginTurn()

	// Ending the superseded turn must not clear the live token.
	sess.EndTurn(stale)
	is.True(sess.CancelTurn()) // current token still installed
	is.True(current.Cancelled())
}

func TestSessionStartModeResetsHistory(t *testing.T) {
	is := is.New(t)

	sess := NewSession("s1")
	sess.StartMode(ModeFreeChat, "", "be helpful")
	sess.Append(Message{Role: RoleUser, Content: "hello"})
	tok := sess.BeginTurn()

	sess.StartMode(ModeInterview, "en", "you are an interviewer")

	is.True(tok.Cancelled()) // switching modes cancels the in-flight turn
	is.Equal(sess.Mode(), ModeInterview)

	history := sess.History()
	is.Equal(len(history), 1)
	is.Equal(history[0].Role, RoleSystem)
	is.Equal(history[0].Content, "you are an interviewer")
}

func TestSessionSnapshotRoundTrip(t *testing.T) {
	is := is.New(t)

	sess := NewSession("s1")
	sess.StartMode(ModeLanguagePractice, "es", "practice spanish")
	sess.Append(Message{Role: RoleUser, Content: "hola"})
	sess.Append(Message{Role: RoleAssistant, Content: "¡Hola! ¿Cómo estás?"})
	sess.BeginTurn()

	data, err := sess.Snapshot()
	is.NoErr(err)

	restored, err := RestoreSession(data)
	is.NoErr(err)
	is.Equal(restored.ID, "s1")
	is.Equal(restored.Mode(), ModeLanguagePractice)
	is.Equal(restored.Language(), "es")
	is.Equal(restored.Len(), 3)

	// The active token is never persisted: a restored session is idle.
	is.True(!restored.CancelTurn())
}

func TestSessionReset(t *testing.T) {
	is := is.New(t)

	sess := NewSession("s1")
	sess.StartMode(ModeInterview, "en", "interviewer")
	sess.Append(Message{Role: RoleUser, Content: "hi"})
	tok := sess.BeginTurn()

	sess.Reset()

	is.True(tok.Cancelled())
	is.Equal(sess.Mode(), Mode(""))
	is.Equal(sess.Len(), 0)
	is.Equal(sess.Language(), "en")
}

func TestRegistry(t *testing.T) {
	is := is.New(t)

	reg := NewRegistry()
	sess := NewSession("s1")
	reg.Add(sess)

	got, ok := reg.Get("s1")
	is.True(ok)
	is.Equal(got.ID, "s1")
	is.Equal(reg.Len(), 1)

	tok := sess.BeginTurn()
	reg.Remove("s1")

	is.True(tok.Cancelled()) // removal cancels any in-flight turn
	_, ok = reg.Get("s1")
	is.True(!ok)
	is.Equal(reg.Len(), 0)
}
