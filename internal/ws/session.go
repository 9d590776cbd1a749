package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/HerbHall/paperstream/internal/research"
	"github.com/HerbHall/paperstream/pkg/llm"
	"go.uber.org/zap"
)

// State is the lifecycle position of a Session.
type State int32

const (
	StateOpen State = iota
	StateProcessing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateProcessing:
		return "processing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Streamer produces the fragment sequence for a topic.
// *research.Service satisfies it.
type Streamer interface {
	Stream(ctx context.Context, topic string) iter.Seq2[llm.Fragment, error]
}

// Session serves one persistent connection. Messages are handled strictly
// one at a time: the next message is not read until the current generation
// has been fully relayed or has failed.
type Session struct {
	id       string
	conn     Conn
	streamer Streamer
	logger   *zap.Logger

	state   atomic.Int32
	queries atomic.Int64
}

// NewSession creates a Session in StateOpen.
func NewSession(id string, conn Conn, streamer Streamer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		id:       id,
		conn:     conn,
		streamer: streamer,
		logger:   logger.With(zap.String("session_id", id)),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Queries returns how many generations this session has started.
func (s *Session) Queries() int64 { return s.queries.Load() }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// Run drives the session until the peer goes away or a frame cannot be
// delivered. It returns the error that ended the session; the session is in
// StateClosed afterwards.
func (s *Session) Run(ctx context.Context) error {
	defer s.setState(StateClosed)

	for {
		s.setState(StateOpen)

		data, err := s.conn.ReadText(ctx)
		if errors.Is(err, ErrBinaryFrame) {
			if err := s.writeError(ctx, err.Error()); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		if err := s.handle(ctx, data); err != nil {
			return err
		}
	}
}

// handle processes one inbound message. A non-nil return means the
// connection is no longer writable.
func (s *Session) handle(ctx context.Context, data []byte) error {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Debug("malformed session message", zap.Error(err))
		return s.writeError(ctx, err.Error())
	}
	if req.Query == nil || *req.Query == "" {
		return s.writeError(ctx, ErrQueryRequired)
	}

	s.setState(StateProcessing)
	s.queries.Add(1)
	topic := *req.Query

	// The generation is not tied to the connection: when the peer leaves
	// mid-stream the loop below stops pulling and the upstream call is
	// dropped with it.
	streamCtx := context.WithoutCancel(ctx)

	fragments := 0
	for frag, err := range research.Observe(research.TransportWS, s.streamer.Stream(streamCtx, topic)) {
		if err != nil {
			s.logger.Warn("session generation failed",
				zap.Int("fragments", fragments),
				zap.String("code", llm.Code(err)),
				zap.Error(err),
			)
			return s.writeError(ctx, err.Error())
		}
		if err := s.conn.WriteJSON(ctx, AnswerFrame{Answer: frag.Text}); err != nil {
			s.logger.Debug("session write failed mid-stream",
				zap.Int("fragments", fragments),
				zap.Error(err),
			)
			return fmt.Errorf("write answer frame: %w", err)
		}
		fragments++
	}

	s.logger.Debug("session generation relayed", zap.Int("fragments", fragments))
	return nil
}

func (s *Session) writeError(ctx context.Context, msg string) error {
	if err := s.conn.WriteJSON(ctx, ErrorFrame{Error: msg}); err != nil {
		return fmt.Errorf("write error frame: %w", err)
	}
	return nil
}
