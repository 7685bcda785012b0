package server

// Inbound event types, sent by the client over the websocket.
const (
	EventStartMode = "start_mode"
	EventUtterance = "utterance"
	EventInterrupt = "interrupt"
	EventReset     = "reset"
)

// Outbound event types. A session event opens every connection; the rest
// are emitted progressively during a turn.
const (
	EventSession       = "session"
	EventStatus        = "status"
	EventPartialText   = "partial_text"
	EventAudioChunk    = "audio_chunk"
	EventTurnComplete  = "turn_complete"
	EventTurnCancelled = "turn_cancelled"
	EventTurnError     = "turn_error"
)

// inboundEvent is the wire format for client events. The session id is
// implicit: it is bound to the connection, never carried on the wire.
type inboundEvent struct {
	Type     string `json:"type"`
	Mode     string `json:"mode,omitempty"`
	Language string `json:"language,omitempty"`
	Text     string `json:"text,omitempty"`

	// Audio is base64-encoded capture bytes for audio utterances.
	Audio    string `json:"audio,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`

	// Interrupted marks an utterance that cut off the assistant; the
	// client's VAD sets it when speech started during playback.
	Interrupted bool `json:"interrupted,omitempty"`
}

// outboundEvent is the wire format for server events.
type outboundEvent struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Audio   string `json:"audio,omitempty"` // base64
	Index   int    `json:"index"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`

	// SessionID is carried on session events; clients present it on the
	// next connect to resume.
	SessionID string `json:"session_id,omitempty"`
}
