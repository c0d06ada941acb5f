package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/google/uuid"

	"github.com/cosmicverge/tickengine/internal/application/auth"
	"github.com/cosmicverge/tickengine/internal/application/common"
	"github.com/cosmicverge/tickengine/internal/application/session"
)

const outboundBufferSize = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Server upgrades connections on /connect, handing each one a Session
// registered with the Manager, and runs the mediator dispatch loop for it.
type Server struct {
	mediator        common.Mediator
	manager         *session.Manager
	protocolVersion string
	logger          *slog.Logger
}

// NewServer builds the websocket transport around an already-wired
// mediator and the shared session manager.
func NewServer(mediator common.Mediator, manager *session.Manager, protocolVersion string, logger *slog.Logger) *Server {
	return &Server{mediator: mediator, manager: manager, protocolVersion: protocolVersion, logger: logger}
}

// Handler returns the http.Handler to mount at the connect path.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveConnect)
}

func (s *Server) serveConnect(w http.ResponseWriter, r *http.Request) {
	installationID := installationIDFromRequest(r)

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws: upgrade failed", "error", err)
		return
	}

	sess := session.NewSession(installationID, outboundBufferSize)
	s.manager.Add(sess)
	defer s.manager.Remove(installationID)

	c := newConn(ws)
	defer c.close()

	sess.Send(session.Unauthenticated{})

	ctx := auth.WithInstallationID(r.Context(), installationID)
	ctx = session.WithSession(ctx, sess)

	err = pump(ctx, c, sess.Outbound, func(raw []byte) error {
		return s.dispatch(ctx, raw, sess)
	})
	if err != nil && !errors.Is(err, ErrPongTimeout) {
		s.logger.Info("ws: connection closed", "installation_id", installationID, "error", err)
	}
}

func (s *Server) dispatch(ctx context.Context, raw []byte, sess *session.Session) error {
	req, err := decodeRequest(raw)
	if err != nil {
		sess.Send(session.ErrorMessage{Key: "bad-request"})
		return nil
	}

	resp, err := s.mediator.Send(ctx, req)
	if err != nil {
		s.logger.Warn("ws: request handling failed", "error", err)
		sess.Send(session.ErrorMessage{Key: "internal-error"})
		return nil
	}
	if resp != nil {
		sess.Send(resp)
	}
	return nil
}

// installationIDFromRequest resolves the caller's installation id from a
// cookie set on first connect, minting a fresh one otherwise. The HTTP
// layer that sets this cookie on the initial page load is out of scope
// here; this is the fallback for a client that never received one.
func installationIDFromRequest(r *http.Request) auth.InstallationID {
	if cookie, err := r.Cookie("installation_id"); err == nil && cookie.Value != "" {
		return auth.InstallationID(cookie.Value)
	}
	return auth.InstallationID(uuid.NewString())
}
