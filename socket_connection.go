package boreas

import (
	"context"

	"github.com/coder/websocket"
)

// SocketConnection abstracts the wire connection a session writes to. The
// default implementation wraps github.com/coder/websocket; frameworks that
// provide their own WebSocket implementation can drive the dispatcher with
// a custom one.
type SocketConnection interface {
	// Read blocks until the next message arrives or the connection fails.
	Read(ctx context.Context) ([]byte, error)

	// Write sends one message.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection with the given status code and reason.
	Close(status Status, reason string) error
}

// WebSocketConnection is the SocketConnection implementation backing
// connections accepted by the dispatcher's own HTTP upgrade handling.
type WebSocketConnection struct {
	conn *websocket.Conn
}

var _ SocketConnection = &WebSocketConnection{}

// NewWebSocketConnection wraps a github.com/coder/websocket connection.
// Most applications don't need to call this directly unless implementing
// custom connection handling.
func NewWebSocketConnection(conn *websocket.Conn) *WebSocketConnection {
	return &WebSocketConnection{conn: conn}
}

func (c *WebSocketConnection) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

func (c *WebSocketConnection) Write(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *WebSocketConnection) Close(status Status, reason string) error {
	return c.conn.Close(websocket.StatusCode(status), reason)
}
