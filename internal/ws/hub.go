package ws

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var sessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "paperstream_ws_sessions_active",
	Help: "Number of open WebSocket research sessions.",
})

func init() {
	prometheus.MustRegister(sessionsActive)
}

// Hub tracks live sessions so they can be counted and shut down together.
type Hub struct {
	mu       sync.RWMutex
	sessions map[*Session]struct{}
	logger   *zap.Logger
}

// NewHub creates a new session hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sessions: make(map[*Session]struct{}),
		logger:   logger,
	}
}

// Register adds a session to the hub.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s]; !ok {
		h.sessions[s] = struct{}{}
		sessionsActive.Inc()
	}
	h.mu.Unlock()
	h.logger.Debug("websocket session connected", zap.String("session_id", s.ID()))
}

// Unregister removes a session from the hub. Unknown sessions are ignored.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s]; ok {
		delete(h.sessions, s)
		sessionsActive.Dec()
	}
	h.mu.Unlock()
	h.logger.Debug("websocket session disconnected",
		zap.String("session_id", s.ID()),
		zap.Int64("queries", s.Queries()),
	)
}

// SessionCount returns the number of registered sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// CloseAll closes every registered session's connection and waits for the
// close handshakes. Each session's Run then returns and its handler
// unregisters it.
func (h *Hub) CloseAll(reason string) {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.conn.Close(reason); err != nil {
				h.logger.Debug("websocket close failed",
					zap.String("session_id", s.ID()),
					zap.Error(err),
				)
			}
		}()
	}
	wg.Wait()
	if len(sessions) > 0 {
		h.logger.Info("closed websocket sessions", zap.Int("count", len(sessions)))
	}
}
