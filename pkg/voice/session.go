// Package voice implements the core of the conversation service: the
// streaming generation→chunking→synthesis pipeline, its cooperative
// cancellation protocol, the sentence chunker, the rule-based tone
// classifier, the history compressor, and the per-connection session state.
package voice

import (
	"encoding/json"
	"sync"
	"time"
)

// Role identifies who produced a history message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a session's ordered history. Messages are
// immutable once appended; only compression replaces a prefix range with a
// single summary message.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Interrupted marks a user utterance that truncated a prior assistant
	// turn, or the partial assistant message appended after a cancellation.
	Interrupted bool `json:"interrupted,omitempty"`
}

// Session holds per-connection conversation state. The history and active
// token are mutated only by the session's own turn task; the mutex exists
// because interrupt and reset events arrive on the transport goroutine.
type Session struct {
	ID string

	mu           sync.Mutex
	mode         Mode
	language     string
	messages     []Message
	active       *TurnToken
	createdAt    time.Time
	lastActivity time.Time
}

// NewSession creates an empty session. Mode and history are set by the
// first start_mode event.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		language:     "en",
		createdAt:    now,
		lastActivity: now,
	}
}

// StartMode resets the session for the given mode: prior history is
// discarded, the persona prompt becomes the leading system message, and any
// in-flight turn is cancelled.
func (s *Session) StartMode(mode Mode, language, personaPrompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.active.Cancel()
		s.active = nil
	}
	s.mode = mode
	if language != "" {
		s.language = language
	}
	s.messages = []Message{{
		Role:      RoleSystem,
		Content:   personaPrompt,
		Timestamp: time.Now(),
	}}
	s.lastActivity = time.Now()
}

// Mode returns the session's current mode ("" before any start_mode).
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Language returns the practice language tag.
func (s *Session) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// Append adds a message to the history.
func (s *Session) Append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.messages = append(s.messages, msg)
	s.lastActivity = time.Now()
}

// History returns a copy of the message history.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SetHistory replaces the history wholesale. Used only by memory
// compression, which substitutes a summarized prefix.
func (s *Session) SetHistory(messages []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = messages
	s.lastActivity = time.Now()
}

// Len returns the current history length.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// BeginTurn invalidates any in-flight token for this session and installs a
// fresh one. Any loop still polling the old token observes cancellation; at
// most one token per session is ever live.
func (s *Session) BeginTurn() *TurnToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.active.Cancel()
	}
	tok := newTurnToken(s.ID)
	s.active = tok
	s.lastActivity = time.Now()
	return tok
}

// CancelTurn cancels the session's current token. Idempotent; a no-op when
// no turn is in flight. Reports whether a live turn was actually cancelled.
func (s *Session) CancelTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.active.Cancelled() {
		return false
	}
	s.active.Cancel()
	return true
}

// EndTurn clears the active token if tok is still the current one. A token
// replaced by a newer BeginTurn is left alone.
func (s *Session) EndTurn(tok *TurnToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == tok {
		s.active = nil
	}
}

// Reset clears mode and history and cancels any in-flight turn, returning
// the session to its just-connected state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.active.Cancel()
		s.active = nil
	}
	s.mode = ""
	s.language = "en"
	s.messages = nil
	s.lastActivity = time.Now()
}

// snapshot is the serialized session layout persisted to the session store.
type snapshot struct {
	ID           string    `json:"id"`
	Mode         Mode      `json:"mode,omitempty"`
	Language     string    `json:"language"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Snapshot serializes the session for the external session store. The
// active token is deliberately not persisted; a restored session never has
// a generation in flight.
func (s *Session) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(snapshot{
		ID:           s.ID,
		Mode:         s.mode,
		Language:     s.language,
		Messages:     s.messages,
		CreatedAt:    s.createdAt,
		LastActivity: s.lastActivity,
	})
}

// RestoreSession rebuilds a session from stored bytes.
func RestoreSession(data []byte) (*Session, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	s := NewSession(snap.ID)
	s.mode = snap.Mode
	if snap.Language != "" {
		s.language = snap.Language
	}
	s.messages = snap.Messages
	if !snap.CreatedAt.IsZero() {
		s.createdAt = snap.CreatedAt
	}
	return s, nil
}
