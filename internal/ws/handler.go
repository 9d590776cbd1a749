package ws

import (
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultReadLimit    = 1 << 20
	defaultWriteTimeout = 30 * time.Second
)

// Handler serves the persistent research endpoint.
type Handler struct {
	hub            *Hub
	streamer       Streamer
	originPatterns []string
	logger         *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler. allowedOrigins are full origins
// such as "http://localhost:3000"; browsers on other origins are refused.
// Clients that send no Origin header are always accepted.
func NewHandler(streamer Streamer, hub *Hub, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hub == nil {
		hub = NewHub(logger)
	}
	return &Handler{
		hub:            hub,
		streamer:       streamer,
		originPatterns: originPatterns(allowedOrigins),
		logger:         logger,
	}
}

// Hub returns the handler's session hub.
func (h *Handler) Hub() *Hub { return h.hub }

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", h.handleSession)
}

// handleSession upgrades the connection and runs a research session on it
// until the peer disconnects.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}

	s := NewSession(uuid.NewString(), newWSConn(conn, defaultReadLimit, defaultWriteTimeout), h.streamer, h.logger)
	h.hub.Register(s)
	defer h.hub.Unregister(s)

	err = s.Run(r.Context())
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
		h.logger.Debug("client disconnected", zap.String("session_id", s.ID()))
	default:
		h.logger.Info("websocket session ended",
			zap.String("session_id", s.ID()),
			zap.Error(err),
		)
	}
	_ = conn.CloseNow()
}

// originPatterns converts full origins to the host patterns AcceptOptions expects.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			patterns = append(patterns, o)
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}
