package server

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"
	"time"

	"github.com/chriscow/voicechat-go/pkg/voice"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second

	// outboundBuffer bounds the per-connection send queue. Audio chunks are
	// produced at speech rate, so a modest buffer is plenty.
	outboundBuffer = 64
)

// conn owns one websocket connection and its session. All outbound events
// funnel through a single write pump so chunk emission stays ordered.
type conn struct {
	srv  *Server
	ws   *websocket.Conn
	sess *voice.Session
	log  *slog.Logger

	out       chan outboundEvent
	done      chan struct{}
	closeOnce sync.Once
}

func newConn(srv *Server, ws *websocket.Conn, sess *voice.Session) *conn {
	return &conn{
		srv:  srv,
		ws:   ws,
		sess: sess,
		log:  srv.log.With(slog.String("session", sess.ID)),
		out:  make(chan outboundEvent, outboundBuffer),
		done: make(chan struct{}),
	}
}

// run services the connection until the client goes away. The read loop
// runs on the caller's goroutine; writes have their own pump.
func (c *conn) run(ctx context.Context) {
	go c.writePump()
	defer c.close()

	for {
		var ev inboundEvent
		if err := c.ws.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
		c.dispatch(ctx, ev)
	}
}

func (c *conn) dispatch(ctx context.Context, ev inboundEvent) {
	switch ev.Type {
	case EventStartMode:
		c.handleStartMode(ctx, ev)
	case EventUtterance:
		c.handleUtterance(ctx, ev)
	case EventInterrupt:
		// Flips the active token; the in-flight turn observes it at its
		// next poll point. Safe no-op when nothing is in flight.
		if c.sess.CancelTurn() {
			c.log.Info("turn interrupted by user")
		}
	case EventReset:
		c.sess.Reset()
		c.srv.dropSession(ctx, c.sess.ID)
		c.Status("Session reset. Choose a mode to start.")
	default:
		c.log.Debug("ignoring unknown event", slog.String("type", ev.Type))
	}
}

func (c *conn) handleStartMode(ctx context.Context, ev inboundEvent) {
	mode, err := voice.ParseMode(ev.Mode)
	if err != nil {
		c.Status("Unknown mode. Choose interview, language, or general.")
		return
	}

	language := ev.Language
	if mode == voice.ModeLanguagePractice {
		if _, ok := voice.SupportedLanguages[language]; !ok {
			language = "en"
		}
	}

	persona := c.srv.profiles.PersonaFor(mode, language)
	c.sess.StartMode(mode, language, persona)
	c.log.Info("mode started", slog.String("mode", string(mode)), slog.String("language", language))

	prof, _ := c.srv.profiles.Get(mode)
	if prof.Greet {
		go c.runTurn(ctx, func() { c.srv.pipeline.RunGreeting(ctx, c.sess, c) })
		return
	}
	c.Status("Ready to chat! Speak or type your message.")
	c.srv.persistSession(ctx, c.sess)
}

func (c *conn) handleUtterance(ctx context.Context, ev inboundEvent) {
	if !c.srv.limiter.Allow(ctx, c.sess.ID) {
		c.Status("You're sending messages too quickly. Please slow down.")
		return
	}

	utt := voice.Utterance{
		Text:        ev.Text,
		MIMEType:    ev.MIMEType,
		Interrupted: ev.Interrupted,
	}
	if ev.Audio != "" {
		audio, err := base64.StdEncoding.DecodeString(ev.Audio)
		if err != nil {
			c.Status("Could not decode audio. Please try again.")
			return
		}
		if len(audio) > c.srv.maxAudioSize {
			c.Status("Audio message is too large.")
			return
		}
		utt.Audio = audio
	} else if len(ev.Text) > c.srv.maxTextLength {
		c.Status("Message is too long.")
		return
	}

	go c.runTurn(ctx, func() { c.srv.pipeline.RunTurn(ctx, c.sess, utt, c) })
}

// runTurn executes one pipeline turn and persists the session afterwards.
func (c *conn) runTurn(ctx context.Context, turn func()) {
	turn()
	c.srv.persistSession(ctx, c.sess)
}

func (c *conn) writePump() {
	for {
		select {
		case ev := <-c.out:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteJSON(ev); err != nil {
				c.log.Warn("websocket write failed", slog.String("error", err.Error()))
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// send enqueues an outbound event, dropping it if the connection is gone.
func (c *conn) send(ev outboundEvent) {
	select {
	case c.out <- ev:
	case <-c.done:
	}
}

// The conn is the pipeline's Emitter: events flow to the client in the
// order the pipeline produced them.

func (c *conn) Status(message string) {
	c.send(outboundEvent{Type: EventStatus, Message: message})
}

func (c *conn) PartialText(text string) {
	c.send(outboundEvent{Type: EventPartialText, Text: text})
}

func (c *conn) AudioChunk(index int, audio []byte) {
	c.send(outboundEvent{
		Type:  EventAudioChunk,
		Index: index,
		Audio: base64.StdEncoding.EncodeToString(audio),
	})
}

func (c *conn) TurnComplete() {
	c.send(outboundEvent{Type: EventTurnComplete})
}

func (c *conn) TurnCancelled() {
	c.send(outboundEvent{Type: EventTurnCancelled})
}

func (c *conn) TurnError(kind, message string) {
	c.send(outboundEvent{Type: EventTurnError, Kind: kind, Message: message})
}
