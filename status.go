package boreas

import "github.com/coder/websocket"

// Status represents a WebSocket close status code as defined in RFC 6455.
// Use these codes when closing a session to indicate the reason.
type Status = websocket.StatusCode

// WebSocket close status codes
const (
	StatusNormalClosure   Status = websocket.StatusNormalClosure   // 1000
	StatusGoingAway       Status = websocket.StatusGoingAway       // 1001
	StatusProtocolError   Status = websocket.StatusProtocolError   // 1002
	StatusUnsupportedData Status = websocket.StatusUnsupportedData // 1003
	StatusPolicyViolation Status = websocket.StatusPolicyViolation // 1008
	StatusMessageTooBig   Status = websocket.StatusMessageTooBig   // 1009
	StatusInternalError   Status = websocket.StatusInternalError   // 1011
	StatusServiceRestart  Status = websocket.StatusServiceRestart  // 1012
	StatusTryAgainLater   Status = websocket.StatusTryAgainLater   // 1013
)
