package boreas

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	envelope, err := ParseEnvelope([]byte(`{"url":"/chat/send","body":{"text":"hi"},"jwt":"tok"}`))
	if err != nil {
		t.Fatal(err)
	}
	if envelope.URL == nil || *envelope.URL != "/chat/send" {
		t.Errorf("expected url /chat/send, got %v", envelope.URL)
	}
	if envelope.JWT == nil || *envelope.JWT != "tok" {
		t.Errorf("expected jwt, got %v", envelope.JWT)
	}
	if envelope.IsRegistration() {
		t.Error("an envelope with a url is not a registration event")
	}

	var body map[string]string
	if err := json.Unmarshal(envelope.Body, &body); err != nil {
		t.Fatal(err)
	}
	if body["text"] != "hi" {
		t.Errorf("expected the body to survive parsing, got %v", body)
	}
}

func TestParseEnvelopeNullURL(t *testing.T) {
	for _, raw := range []string{`{"url":null,"jwt":"tok"}`, `{"jwt":"tok"}`, `{}`} {
		envelope, err := ParseEnvelope([]byte(raw))
		if err != nil {
			t.Fatal(err)
		}
		if !envelope.IsRegistration() {
			t.Errorf("expected %s to be a registration event", raw)
		}
	}
}

func TestParseEnvelopeMalformed(t *testing.T) {
	if _, err := ParseEnvelope([]byte("not json")); err == nil {
		t.Error("expected an error for a malformed envelope")
	}
}

func TestDispatchEnvelopeRoutesBody(t *testing.T) {
	dispatcher := NewDispatcher(&Config{PatternRouting: true})

	var boundBody json.RawMessage
	handler, err := NewFuncHandler(func(ctx *Context, args []any) (any, error) {
		boundBody = args[0].(json.RawMessage)
		return map[string]string{"status": "received"}, nil
	}, Param("body", BodyParam))
	if err != nil {
		t.Fatal(err)
	}
	if err := dispatcher.AddRoute(SocketMethod, "/chat/send", handler); err != nil {
		t.Fatal(err)
	}

	session := NewSession(nil, newFakeConnection())
	result, handled, err := dispatcher.DispatchEnvelope(context.Background(),
		session, []byte(`{"url":"/chat/send","body":{"text":"hi"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !handled {
		t.Fatal("expected the envelope to be handled")
	}

	var body map[string]string
	if err := json.Unmarshal(boundBody, &body); err != nil {
		t.Fatal(err)
	}
	if body["text"] != "hi" {
		t.Errorf("expected the envelope body bound to the declared parameter, got %s", boundBody)
	}
	if result.(map[string]string)["status"] != "received" {
		t.Errorf("expected the handler result, got %v", result)
	}
}

func TestDispatchEnvelopeUnknownURLIsNoOp(t *testing.T) {
	dispatcher := NewDispatcher(&Config{PatternRouting: true})

	session := NewSession(nil, newFakeConnection())
	result, handled, err := dispatcher.DispatchEnvelope(context.Background(),
		session, []byte(`{"url":"/nowhere","body":{}}`))
	if err != nil {
		t.Errorf("an unregistered url must be a no-op, not an error, got %v", err)
	}
	if handled {
		t.Error("expected the envelope not to be handled")
	}
	if result != nil {
		t.Errorf("expected no result, got %v", result)
	}
}

func TestDispatchEnvelopeRegistration(t *testing.T) {
	validated := ""
	dispatcher := NewDispatcher(&Config{
		ValidateToken: func(ctx context.Context, token string) (*Identity, error) {
			validated = token
			return &Identity{Subject: "u1"}, nil
		},
	})

	session := NewSession(nil, newFakeConnection())
	_, handled, err := dispatcher.DispatchEnvelope(context.Background(),
		session, []byte(`{"url":null,"jwt":"tok-1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !handled {
		t.Fatal("expected the registration event to be handled")
	}

	if validated != "tok-1" {
		t.Errorf("expected the jwt to be validated, got %q", validated)
	}
	if session.Token() != "tok-1" {
		t.Errorf("expected the token on the session, got %q", session.Token())
	}
	if _, ok := dispatcher.Registry().Session(session.ID()); !ok {
		t.Error("expected the session in the registry after registration")
	}
}

func TestDispatchEnvelopeRegistrationRejectsBadToken(t *testing.T) {
	dispatcher := NewDispatcher(&Config{
		ValidateToken: func(ctx context.Context, token string) (*Identity, error) {
			return nil, errors.New("expired")
		},
	})

	session := NewSession(nil, newFakeConnection())
	_, _, err := dispatcher.DispatchEnvelope(context.Background(),
		session, []byte(`{"url":null,"jwt":"bad"}`))
	if err == nil {
		t.Fatal("expected registration to fail for an invalid token")
	}
	if _, ok := dispatcher.Registry().Session(session.ID()); ok {
		t.Error("expected the session not to be registered")
	}
	if session.Token() != "" {
		t.Error("expected no token on the session")
	}
}
