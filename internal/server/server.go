// Package server is the transport boundary: a websocket endpoint carrying
// the bidirectional event channel between the browser front end and the
// streaming pipeline. One connection owns one session for its lifetime.
package server

import (
	"context"
	"expvar"
	"log/slog"
	"net/http"

	"github.com/chriscow/voicechat-go/internal/store"
	"github.com/chriscow/voicechat-go/pkg/voice"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Options wires the server's collaborators.
type Options struct {
	Pipeline *voice.Pipeline
	Profiles *voice.Profiles
	Sessions store.SessionStore
	Limiter  store.RateLimiter
	Logger   *slog.Logger

	MaxTextLength int
	MaxAudioSize  int
}

// Server accepts websocket connections and dispatches their events.
type Server struct {
	pipeline *voice.Pipeline
	profiles *voice.Profiles
	registry *voice.Registry
	sessions store.SessionStore
	limiter  store.RateLimiter
	upgrader websocket.Upgrader
	log      *slog.Logger

	maxTextLength int
	maxAudioSize  int
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = 2000
	}
	if opts.MaxAudioSize <= 0 {
		opts.MaxAudioSize = 3 * 1024 * 1024
	}
	return &Server{
		pipeline: opts.Pipeline,
		profiles: opts.Profiles,
		registry: voice.NewRegistry(),
		sessions: opts.Sessions,
		limiter:  opts.Limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin policy is enforced by the reverse proxy in front of
			// this service.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:           opts.Logger,
		maxTextLength: opts.MaxTextLength,
		maxAudioSize:  opts.MaxAudioSize,
	}
}

// Handler returns the HTTP handler: the websocket endpoint, a health check,
// and the expvar metrics page.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/debug/vars", expvar.Handler())
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	sess := s.resumeOrCreate(r)
	s.registry.Add(sess)
	s.log.Info("session connected",
		slog.String("session", sess.ID),
		slog.Int("active", s.registry.Len()))

	c := newConn(s, ws, sess)
	c.send(outboundEvent{Type: EventSession, SessionID: sess.ID})
	c.run(r.Context())

	// Disconnect: any in-flight turn is cancelled and the session leaves
	// the registry. The store entry expires by TTL.
	s.registry.Remove(sess.ID)
	s.log.Info("session disconnected",
		slog.String("session", sess.ID),
		slog.Int("active", s.registry.Len()))
}

// resumeOrCreate restores the session named by the client's session query
// parameter, falling back to a fresh session when the id is absent, unknown
// or expired. A restored session never has a turn in flight.
func (s *Server) resumeOrCreate(r *http.Request) *voice.Session {
	if id := r.URL.Query().Get("session"); id != "" {
		data, err := s.sessions.Load(r.Context(), id)
		if err == nil {
			if sess, err := voice.RestoreSession(data); err == nil {
				s.log.Info("session resumed",
					slog.String("session", sess.ID),
					slog.Int("messages", sess.Len()))
				return sess
			}
			s.log.Warn("stored session unreadable, starting fresh", slog.String("session", id))
		}
	}
	return voice.NewSession(uuid.NewString())
}

// persistSession writes the session snapshot to the session store.
func (s *Server) persistSession(ctx context.Context, sess *voice.Session) {
	data, err := sess.Snapshot()
	if err != nil {
		s.log.Error("session snapshot failed", slog.String("error", err.Error()))
		return
	}
	if err := s.sessions.Save(ctx, sess.ID, data); err != nil {
		s.log.Warn("session persist failed", slog.String("error", err.Error()))
	}
}

// dropSession removes the session's stored state after an explicit reset.
func (s *Server) dropSession(ctx context.Context, id string) {
	if err := s.sessions.Delete(ctx, id); err != nil {
		s.log.Warn("session delete failed", slog.String("error", err.Error()))
	}
}
