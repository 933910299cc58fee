package boreas

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire contract for WebSocket messages: a JSON object with
// a url to route on, an arbitrary body, and an optional jwt. A null or
// absent url is reserved to mean "register this connection" and is handled
// above the route table, not as a route dispatch. Applications may include
// additional fields; they are preserved in Raw.
type Envelope struct {
	URL  *string         `json:"url"`
	Body json.RawMessage `json:"body"`
	JWT  *string         `json:"jwt"`

	// Raw is the envelope as received, for middleware or application code
	// that needs fields beyond the wire contract.
	Raw []byte `json:"-"`
}

// ParseEnvelope decodes a WebSocket message into an envelope.
func ParseEnvelope(data []byte) (*Envelope, error) {
	envelope := &Envelope{}
	if err := json.Unmarshal(data, envelope); err != nil {
		return nil, fmt.Errorf("malformed message envelope: %w", err)
	}
	envelope.Raw = data
	return envelope, nil
}

// IsRegistration reports whether this envelope is a connection
// registration event rather than a route dispatch.
func (e *Envelope) IsRegistration() bool {
	return e.URL == nil
}

// outboundEnvelope is the reply shape written back over a socket. Errors
// and results are mutually exclusive.
type outboundEnvelope struct {
	URL   string `json:"url,omitempty"`
	Body  any    `json:"body,omitempty"`
	Error string `json:"error,omitempty"`
}
