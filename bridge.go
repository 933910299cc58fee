package boreas

// Bridge connects session registries running in different server instances
// so that any node can deliver a message to a session held by another.
// Implementations announce session lifecycle events to all nodes and carry
// encoded messages to the node that owns the target session. See the
// localbridge and natsbridge subpackages.
type Bridge interface {
	AnnounceSessionOpen(nodeID string, sessionID string) error
	BindSessionOpenAnnounce(handler func(nodeID string, sessionID string)) error
	UnbindSessionOpenAnnounce()

	AnnounceSessionClose(nodeID string, sessionID string) error
	BindSessionCloseAnnounce(handler func(nodeID string, sessionID string)) error
	UnbindSessionCloseAnnounce()

	Dispatch(nodeID string, sessionID string, message []byte) error
	BindDispatch(nodeID string, handler func(sessionID string, message []byte) bool) error
	UnbindDispatch(nodeID string)
}
