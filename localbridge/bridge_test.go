package localbridge_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/RobertWHurst/boreas"
	"github.com/RobertWHurst/boreas/localbridge"
)

type captureConnection struct {
	mu     sync.Mutex
	writes [][]byte
}

func (c *captureConnection) Read(ctx context.Context) ([]byte, error) {
	return nil, errors.New("nothing to read")
}

func (c *captureConnection) Write(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, data)
	return nil
}

func (c *captureConnection) Close(status boreas.Status, reason string) error {
	return nil
}

func (c *captureConnection) lastWrite() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.writes) == 0 {
		return nil, false
	}
	return c.writes[len(c.writes)-1], true
}

func TestBridgedRegistriesDeliverAcrossNodes(t *testing.T) {
	bridge := localbridge.New()

	registryA := boreas.NewRegistry()
	registryB := boreas.NewRegistry()
	if err := registryA.SetBridge(bridge); err != nil {
		t.Fatal(err)
	}
	if err := registryB.SetBridge(bridge); err != nil {
		t.Fatal(err)
	}

	connection := &captureConnection{}
	session := boreas.NewSession(nil, connection)
	registryA.Add(session)

	if !registryB.Has(session.ID()) {
		t.Fatal("expected the open announcement to reach the other registry")
	}

	if err := registryB.Send(session.ID(), map[string]any{"note": "cross-node"}); err != nil {
		t.Fatal(err)
	}

	data, ok := connection.lastWrite()
	if !ok {
		t.Fatal("expected the message to reach the session held by the other node")
	}
	var envelope struct {
		Body map[string]any `json:"body"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal failed: %v, got: %s", err, string(data))
	}
	if envelope.Body["note"] != "cross-node" {
		t.Errorf("expected the body to be delivered, got %s", data)
	}
}

func TestCloseAnnouncementRemovesRemoteSession(t *testing.T) {
	bridge := localbridge.New()

	registryA := boreas.NewRegistry()
	registryB := boreas.NewRegistry()
	if err := registryA.SetBridge(bridge); err != nil {
		t.Fatal(err)
	}
	if err := registryB.SetBridge(bridge); err != nil {
		t.Fatal(err)
	}

	session := boreas.NewSession(nil, &captureConnection{})
	registryA.Add(session)
	registryA.Remove(session.ID())

	if registryB.Has(session.ID()) {
		t.Error("expected the close announcement to remove the remote session")
	}
	if err := registryB.Send(session.ID(), "data"); !errors.Is(err, boreas.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}
