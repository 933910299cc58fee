// Package natsbridge provides a Bridge implementation backed by NATS,
// letting session registries on different server instances deliver
// messages to each other's connections.
package natsbridge

import (
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/RobertWHurst/boreas"
)

// Bridge relays session announcements and dispatches over a NATS
// connection.
type Bridge struct {
	natsConnection *nats.Conn

	openSub     *nats.Subscription
	closeSub    *nats.Subscription
	dispatchSub *nats.Subscription
}

var _ boreas.Bridge = &Bridge{}

// New creates a bridge over an established NATS connection.
func New(conn *nats.Conn) *Bridge {
	return &Bridge{natsConnection: conn}
}

type sessionIDs struct {
	NodeID    string `json:"nodeId"`
	SessionID string `json:"sessionId"`
}

type dispatchMessage struct {
	SessionID string `json:"sessionId"`
	Message   []byte `json:"message"`
}

func (b *Bridge) AnnounceSessionOpen(nodeID string, sessionID string) error {
	messageBytes, err := json.Marshal(sessionIDs{
		NodeID:    nodeID,
		SessionID: sessionID,
	})
	if err != nil {
		return err
	}
	return b.natsConnection.Publish(namespace("session.open"), messageBytes)
}

func (b *Bridge) BindSessionOpenAnnounce(handler func(nodeID string, sessionID string)) error {
	sub, err := b.natsConnection.Subscribe(namespace("session.open"), func(msg *nats.Msg) {
		ids := &sessionIDs{}
		if err := json.Unmarshal(msg.Data, ids); err != nil {
			return
		}
		handler(ids.NodeID, ids.SessionID)
	})
	if err != nil {
		return err
	}
	b.openSub = sub
	return nil
}

func (b *Bridge) UnbindSessionOpenAnnounce() {
	if b.openSub != nil {
		_ = b.openSub.Unsubscribe()
		b.openSub = nil
	}
}

func (b *Bridge) AnnounceSessionClose(nodeID string, sessionID string) error {
	messageBytes, err := json.Marshal(sessionIDs{
		NodeID:    nodeID,
		SessionID: sessionID,
	})
	if err != nil {
		return err
	}
	return b.natsConnection.Publish(namespace("session.close"), messageBytes)
}

func (b *Bridge) BindSessionCloseAnnounce(handler func(nodeID string, sessionID string)) error {
	sub, err := b.natsConnection.Subscribe(namespace("session.close"), func(msg *nats.Msg) {
		ids := &sessionIDs{}
		if err := json.Unmarshal(msg.Data, ids); err != nil {
			return
		}
		handler(ids.NodeID, ids.SessionID)
	})
	if err != nil {
		return err
	}
	b.closeSub = sub
	return nil
}

func (b *Bridge) UnbindSessionCloseAnnounce() {
	if b.closeSub != nil {
		_ = b.closeSub.Unsubscribe()
		b.closeSub = nil
	}
}

func (b *Bridge) Dispatch(nodeID string, sessionID string, message []byte) error {
	messageBytes, err := json.Marshal(&dispatchMessage{
		SessionID: sessionID,
		Message:   message,
	})
	if err != nil {
		return err
	}
	return b.natsConnection.Publish(namespace("session.dispatch", nodeID), messageBytes)
}

func (b *Bridge) BindDispatch(nodeID string, handler func(sessionID string, message []byte) bool) error {
	sub, err := b.natsConnection.Subscribe(namespace("session.dispatch", nodeID), func(msg *nats.Msg) {
		dispatch := &dispatchMessage{}
		if err := json.Unmarshal(msg.Data, dispatch); err != nil {
			return
		}
		handler(dispatch.SessionID, dispatch.Message)
	})
	if err != nil {
		return err
	}
	b.dispatchSub = sub
	return nil
}

func (b *Bridge) UnbindDispatch(nodeID string) {
	if b.dispatchSub != nil {
		_ = b.dispatchSub.Unsubscribe()
		b.dispatchSub = nil
	}
}

func namespace(parts ...string) string {
	return "boreas." + strings.Join(parts, ".")
}
