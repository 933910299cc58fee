package boreas

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// ConnectionInfo contains metadata about a WebSocket connection taken from
// the upgrade request: the remote address and the request headers.
type ConnectionInfo struct {
	RemoteAddr string
	Headers    http.Header
}

// Session is the per-connection abstraction injected into handler
// invocations. It wraps the underlying socket connection and carries the
// connection's identity token and application values. A session belongs to
// exactly one connection; the value store is safe for use from other
// goroutines the application may start.
type Session struct {
	id         string
	info       *ConnectionInfo
	connection SocketConnection

	mu     sync.Mutex
	token  string
	values map[string]any
}

// NewSession creates a session for a connection. The transport layer calls
// this once per accepted connection.
func NewSession(info *ConnectionInfo, connection SocketConnection) *Session {
	if info == nil {
		info = &ConnectionInfo{}
	}
	return &Session{
		id:         uuid.NewString(),
		info:       info,
		connection: connection,
		values:     map[string]any{},
	}
}

// ID returns the session's unique identifier, assigned at construction.
// Registered sessions are addressed by this ID through the registry.
func (s *Session) ID() string {
	return s.id
}

// RemoteAddr returns the remote address of the connection.
func (s *Session) RemoteAddr() string {
	return s.info.RemoteAddr
}

// Headers returns the headers of the upgrade request.
func (s *Session) Headers() http.Header {
	return s.info.Headers
}

// Token returns the bearer token attached during connection registration,
// or an empty string.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken attaches a bearer token to the session. Identity resolution
// consults it before the query string and the Authorization header.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Set stores a per-connection value.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Get returns a per-connection value, or nil if it was never set.
func (s *Session) Get(key string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Send marshals a reply envelope carrying the given body and writes it to
// the connection.
func (s *Session) Send(body any) error {
	data, err := json.Marshal(outboundEnvelope{Body: body})
	if err != nil {
		return err
	}
	return s.connection.Write(context.Background(), data)
}

// SendError writes an error envelope to the connection.
func (s *Session) SendError(message string) error {
	data, err := json.Marshal(outboundEnvelope{Error: message})
	if err != nil {
		return err
	}
	return s.connection.Write(context.Background(), data)
}

// SendRaw writes an already-encoded message to the connection. Used by the
// registry when forwarding bridged messages from other nodes.
func (s *Session) SendRaw(data []byte) error {
	return s.connection.Write(context.Background(), data)
}

// Close closes the underlying connection with the given status and reason.
func (s *Session) Close(status Status, reason string) error {
	return s.connection.Close(status, reason)
}
