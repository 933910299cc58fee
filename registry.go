package boreas

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Registry tracks registered sessions and delivers messages to them by
// session ID. Sessions on this node are held directly; sessions on other
// nodes are reachable through a Bridge, which announces session open and
// close events and forwards encoded messages between nodes.
//
// Unlike the route table, the registry mutates during traffic (connections
// register and disconnect continuously), so it carries its own lock.
type Registry struct {
	mu sync.Mutex

	id     string
	bridge Bridge

	local  map[string]*Session
	remote map[string]string
}

// NewRegistry creates an empty registry with a unique node ID.
func NewRegistry() *Registry {
	return &Registry{
		id:     uuid.NewString(),
		local:  map[string]*Session{},
		remote: map[string]string{},
	}
}

// ID returns the registry's node identifier, used to address this node
// over a bridge.
func (r *Registry) ID() string {
	return r.id
}

// SetBridge connects the registry to other nodes. Any previous bridge is
// unbound and the registry's local sessions are announced as closed on it
// before the new bridge takes over.
func (r *Registry) SetBridge(bridge Bridge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bridge != nil {
		r.bridge.UnbindDispatch(r.id)
		r.bridge.UnbindSessionOpenAnnounce()
		r.bridge.UnbindSessionCloseAnnounce()
		for sessionID := range r.local {
			_ = r.bridge.AnnounceSessionClose(r.id, sessionID)
		}
	}

	// A failed bind must not leave earlier handlers attached to a bridge
	// the registry never adopted.
	if err := bridge.BindDispatch(r.id, r.handleDispatch); err != nil {
		return err
	}
	if err := bridge.BindSessionOpenAnnounce(r.handleSessionOpen); err != nil {
		bridge.UnbindDispatch(r.id)
		return err
	}
	if err := bridge.BindSessionCloseAnnounce(r.handleSessionClose); err != nil {
		bridge.UnbindDispatch(r.id)
		bridge.UnbindSessionOpenAnnounce()
		return err
	}

	for sessionID := range r.local {
		if err := bridge.AnnounceSessionOpen(r.id, sessionID); err != nil {
			bridge.UnbindDispatch(r.id)
			bridge.UnbindSessionOpenAnnounce()
			bridge.UnbindSessionCloseAnnounce()
			return err
		}
	}

	r.bridge = bridge

	return nil
}

// Add registers a session with this node and announces it to bridged
// nodes. Called by the dispatcher when a connection sends its registration
// envelope.
func (r *Registry) Add(session *Session) {
	r.mu.Lock()
	r.local[session.ID()] = session
	bridge := r.bridge
	r.mu.Unlock()

	if bridge != nil {
		_ = bridge.AnnounceSessionOpen(r.id, session.ID())
	}
}

// Remove drops a session and announces the close to bridged nodes.
// Removing an unregistered session is a no-op.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	_, ok := r.local[sessionID]
	delete(r.local, sessionID)
	bridge := r.bridge
	r.mu.Unlock()

	if ok && bridge != nil {
		_ = bridge.AnnounceSessionClose(r.id, sessionID)
	}
}

// Session returns the locally held session with the given ID.
func (r *Registry) Session(sessionID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.local[sessionID]
	return session, ok
}

// Has reports whether the session is known, locally or on a bridged node.
func (r *Registry) Has(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.local[sessionID]; ok {
		return true
	}
	_, ok := r.remote[sessionID]
	return ok
}

// Send delivers a message body to the session with the given ID, writing
// directly when the session is local and forwarding over the bridge when
// another node announced it. Returns ErrSessionNotFound for unknown IDs.
func (r *Registry) Send(sessionID string, body any) error {
	r.mu.Lock()
	session, isLocal := r.local[sessionID]
	nodeID, isRemote := r.remote[sessionID]
	bridge := r.bridge
	r.mu.Unlock()

	if isLocal {
		return session.Send(body)
	}

	if isRemote && bridge != nil {
		data, err := json.Marshal(outboundEnvelope{Body: body})
		if err != nil {
			return err
		}
		return bridge.Dispatch(nodeID, sessionID, data)
	}

	return ErrSessionNotFound
}

func (r *Registry) handleDispatch(sessionID string, data []byte) bool {
	r.mu.Lock()
	session, ok := r.local[sessionID]
	r.mu.Unlock()

	if !ok {
		return false
	}

	_ = session.SendRaw(data)
	return true
}

func (r *Registry) handleSessionOpen(nodeID string, sessionID string) {
	r.mu.Lock()
	r.remote[sessionID] = nodeID
	r.mu.Unlock()
}

func (r *Registry) handleSessionClose(nodeID string, sessionID string) {
	r.mu.Lock()
	delete(r.remote, sessionID)
	r.mu.Unlock()
}
