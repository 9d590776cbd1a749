package ws

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// ErrBinaryFrame is returned by Conn.ReadText when the peer sends a binary
// message. It does not end the session.
var ErrBinaryFrame = errors.New("binary frames are not supported, send a JSON text frame")

// Conn is the transport a Session talks through.
type Conn interface {
	// ReadText blocks for the next inbound text message.
	ReadText(ctx context.Context) ([]byte, error)
	// WriteJSON sends v as one JSON text message.
	WriteJSON(ctx context.Context, v any) error
	// Close ends the connection with a going-away status.
	Close(reason string) error
}

// wsConn adapts a coder/websocket connection to Conn.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func newWSConn(conn *websocket.Conn, readLimit int64, writeTimeout time.Duration) *wsConn {
	conn.SetReadLimit(readLimit)
	return &wsConn{conn: conn, writeTimeout: writeTimeout}
}

func (c *wsConn) ReadText(ctx context.Context) ([]byte, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageText {
		return nil, ErrBinaryFrame
	}
	return data, nil
}

func (c *wsConn) WriteJSON(ctx context.Context, v any) error {
	if c.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}
	return wsjson.Write(ctx, c.conn, v)
}

func (c *wsConn) Close(reason string) error {
	return c.conn.Close(websocket.StatusGoingAway, reason)
}
