// Package localbridge provides an in-process Bridge implementation. It
// connects session registries living in the same process, which is useful
// for tests and for running several independently configured dispatchers
// in one binary.
package localbridge

import (
	"sync"

	"github.com/RobertWHurst/boreas"
)

// Bridge relays announcements and dispatches between registries in the
// same process. Create one bridge and pass it to each registry's
// SetBridge.
type Bridge struct {
	mu sync.Mutex

	openHandlers     []func(nodeID string, sessionID string)
	closeHandlers    []func(nodeID string, sessionID string)
	dispatchHandlers map[string]func(sessionID string, message []byte) bool
}

var _ boreas.Bridge = &Bridge{}

// New creates an empty in-process bridge.
func New() *Bridge {
	return &Bridge{
		dispatchHandlers: map[string]func(string, []byte) bool{},
	}
}

func (b *Bridge) AnnounceSessionOpen(nodeID string, sessionID string) error {
	b.mu.Lock()
	handlers := append([]func(string, string){}, b.openHandlers...)
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(nodeID, sessionID)
	}
	return nil
}

func (b *Bridge) BindSessionOpenAnnounce(handler func(nodeID string, sessionID string)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.openHandlers = append(b.openHandlers, handler)
	return nil
}

func (b *Bridge) UnbindSessionOpenAnnounce() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.openHandlers = nil
}

func (b *Bridge) AnnounceSessionClose(nodeID string, sessionID string) error {
	b.mu.Lock()
	handlers := append([]func(string, string){}, b.closeHandlers...)
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(nodeID, sessionID)
	}
	return nil
}

func (b *Bridge) BindSessionCloseAnnounce(handler func(nodeID string, sessionID string)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeHandlers = append(b.closeHandlers, handler)
	return nil
}

func (b *Bridge) UnbindSessionCloseAnnounce() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeHandlers = nil
}

func (b *Bridge) Dispatch(nodeID string, sessionID string, message []byte) error {
	b.mu.Lock()
	handler, ok := b.dispatchHandlers[nodeID]
	b.mu.Unlock()

	if !ok {
		return nil
	}
	handler(sessionID, message)
	return nil
}

func (b *Bridge) BindDispatch(nodeID string, handler func(sessionID string, message []byte) bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dispatchHandlers[nodeID] = handler
	return nil
}

func (b *Bridge) UnbindDispatch(nodeID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.dispatchHandlers, nodeID)
}
