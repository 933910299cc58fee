package boreas

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestDispatchLiteralRoute(t *testing.T) {
	dispatcher := NewDispatcher(nil)

	handler, err := NewFuncHandler(func(ctx *Context, args []any) (any, error) {
		return "listed", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := dispatcher.AddRoute("GET", "/users/list", handler); err != nil {
		t.Fatal(err)
	}

	result, err := dispatcher.Dispatch(NewRequest("GET", "/users/list", nil))
	if err != nil {
		t.Fatal(err)
	}
	if result != "listed" {
		t.Errorf("expected the handler result, got %v", result)
	}
}

func TestDispatchNotFound(t *testing.T) {
	dispatcher := NewDispatcher(nil)

	_, err := dispatcher.Dispatch(NewRequest("GET", "/missing", nil))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDispatchUserByID(t *testing.T) {
	// Route GET /users/{id} with a handler expecting an opaque identifier.
	dispatcher := NewDispatcher(&Config{PatternRouting: true})

	handler, err := NewFuncHandler(func(ctx *Context, args []any) (any, error) {
		return args[0], nil
	}, Param("id", UUIDParam))
	if err != nil {
		t.Fatal(err)
	}
	if err := dispatcher.AddRoute("GET", "/users/{id}", handler); err != nil {
		t.Fatal(err)
	}

	id := uuid.MustParse("3fae2c1d-9b7e-4a8f-b1c2-0d9e8f7a6b5c")
	result, err := dispatcher.Dispatch(NewRequest("GET", "/users/"+id.String(), nil))
	if err != nil {
		t.Fatal(err)
	}
	if result != id {
		t.Errorf("expected the parsed identifier, got %v", result)
	}

	_, err = dispatcher.Dispatch(NewRequest("GET", "/users/not-a-guid", nil))
	var bindingErr *BindingError
	if !errors.As(err, &bindingErr) {
		t.Errorf("expected a binding error for a malformed identifier, got %v", err)
	}
}

func TestDispatchSearchWithQueryDefault(t *testing.T) {
	// Route GET /search with (q: string = ""), query mapping enabled.
	dispatcher := NewDispatcher(&Config{PatternRouting: true})

	handler, err := NewFuncHandler(func(ctx *Context, args []any) (any, error) {
		return args[0], nil
	}, ParamWithDefault("q", StringParam, ""))
	if err != nil {
		t.Fatal(err)
	}
	if err := dispatcher.AddRoute("GET", "/search", handler, WithQueryMapping()); err != nil {
		t.Fatal(err)
	}

	result, err := dispatcher.Dispatch(NewRequest("GET", "/search", nil))
	if err != nil {
		t.Fatal(err)
	}
	if result != "" {
		t.Errorf("expected the empty default, got %v", result)
	}

	result, err = dispatcher.Dispatch(NewRequest("GET", "/search", map[string]string{"q": "hello"}))
	if err != nil {
		t.Fatal(err)
	}
	if result != "hello" {
		t.Errorf("expected %q, got %v", "hello", result)
	}
}

func TestDispatchDecodesCapturesExactlyOnce(t *testing.T) {
	dispatcher := NewDispatcher(&Config{PatternRouting: true})

	handler, err := NewFuncHandler(func(ctx *Context, args []any) (any, error) {
		return args[0], nil
	}, Param("name", StringParam))
	if err != nil {
		t.Fatal(err)
	}
	if err := dispatcher.AddRoute("GET", "/files/{name}", handler); err != nil {
		t.Fatal(err)
	}

	// net/http already decodes URL.Path, so building the neutral request
	// from the decoded path would decode captures a second time: %25 would
	// fail binding and %2520 would collapse to a space.
	tests := []struct {
		path string
		want string
	}{
		{"/files/50%25", "50%"},
		{"/files/a%2520b", "a%20b"},
		{"/files/plain", "plain"},
	}
	for _, tt := range tests {
		request := RequestFromHTTP(httptest.NewRequest("GET", tt.path, nil))
		result, err := dispatcher.Dispatch(request)
		if err != nil {
			t.Errorf("unexpected error for %q: %v", tt.path, err)
			continue
		}
		if result != tt.want {
			t.Errorf("expected %q to bind %q, got %v", tt.path, tt.want, result)
		}
	}
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	dispatcher := NewDispatcher(nil)

	handler, err := NewFuncHandler(func(ctx *Context, args []any) (any, error) {
		panic("handler exploded")
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := dispatcher.AddRoute("GET", "/boom", handler); err != nil {
		t.Fatal(err)
	}

	_, err = dispatcher.Dispatch(NewRequest("GET", "/boom", nil))
	var invocationErr *InvocationError
	if !errors.As(err, &invocationErr) {
		t.Fatalf("expected *InvocationError, got %v", err)
	}
	if invocationErr.Stack == "" {
		t.Error("expected the captured handler stack on the error")
	}

	// The dispatcher must still serve other requests afterwards.
	okHandler, err := NewFuncHandler(func(ctx *Context, args []any) (any, error) {
		return "fine", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := dispatcher.AddRoute("GET", "/fine", okHandler); err != nil {
		t.Fatal(err)
	}
	if result, err := dispatcher.Dispatch(NewRequest("GET", "/fine", nil)); err != nil || result != "fine" {
		t.Errorf("expected normal dispatch after a fault, got %v, %v", result, err)
	}
}

func TestDispatchWrapsHandlerError(t *testing.T) {
	dispatcher := NewDispatcher(nil)
	cause := errors.New("db down")

	handler, err := NewFuncHandler(func(ctx *Context, args []any) (any, error) {
		return nil, cause
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := dispatcher.AddRoute("GET", "/failing", handler); err != nil {
		t.Fatal(err)
	}

	_, err = dispatcher.Dispatch(NewRequest("GET", "/failing", nil))
	var invocationErr *InvocationError
	if !errors.As(err, &invocationErr) {
		t.Fatalf("expected *InvocationError, got %T", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected the handler's error as the cause")
	}
}

func TestIdentityIsLazyAndCached(t *testing.T) {
	validations := 0
	config := &Config{
		ValidateToken: func(ctx context.Context, token string) (*Identity, error) {
			validations += 1
			return &Identity{Subject: "user-" + token}, nil
		},
	}

	request := NewRequest("GET", "/", map[string]string{"token": "abc"})
	ctx := newContext(nil, request, config)

	if validations != 0 {
		t.Fatal("expected no validation before the first Identity access")
	}

	first, err := ctx.Identity()
	if err != nil {
		t.Fatal(err)
	}
	second, err := ctx.Identity()
	if err != nil {
		t.Fatal(err)
	}

	if validations != 1 {
		t.Errorf("expected the token to be validated exactly once, got %d", validations)
	}
	if first != second || first.Subject != "user-abc" {
		t.Error("expected the cached identity on repeated access")
	}
}

func TestIdentityTokenSourceOrder(t *testing.T) {
	config := &Config{
		ValidateToken: func(ctx context.Context, token string) (*Identity, error) {
			return &Identity{Subject: token}, nil
		},
	}

	// Session token wins over query and header.
	session := NewSession(nil, nil)
	session.SetToken("session-token")
	request := NewRequest("GET", "/", map[string]string{"token": "query-token"})
	request.Header = map[string][]string{"Authorization": {"Bearer header-token"}}

	identity, err := newContext(session, request, config).Identity()
	if err != nil {
		t.Fatal(err)
	}
	if identity.Subject != "session-token" {
		t.Errorf("expected the session token to win, got %q", identity.Subject)
	}

	// Query token wins over the header.
	identity, err = newContext(nil, request, config).Identity()
	if err != nil {
		t.Fatal(err)
	}
	if identity.Subject != "query-token" {
		t.Errorf("expected the query token to win, got %q", identity.Subject)
	}

	// Header is the last resort.
	headerOnly := NewRequest("GET", "/", nil)
	headerOnly.Header = map[string][]string{"Authorization": {"Bearer header-token"}}
	identity, err = newContext(nil, headerOnly, config).Identity()
	if err != nil {
		t.Fatal(err)
	}
	if identity.Subject != "header-token" {
		t.Errorf("expected the header token, got %q", identity.Subject)
	}

	// No token at all.
	if _, err := newContext(nil, NewRequest("GET", "/", nil), config).Identity(); !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
}

func TestAddRouteFailsForLiteralDuplicates(t *testing.T) {
	dispatcher := NewDispatcher(nil)

	handler, err := NewFuncHandler(func(ctx *Context, args []any) (any, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := dispatcher.AddRoute("GET", "/x", handler); err != nil {
		t.Fatal(err)
	}
	if err := dispatcher.AddRoute("GET", "/x", handler); err == nil {
		t.Fatal("expected a registration error for the duplicate route")
	}
	if dispatcher.Table().Len() != 1 {
		t.Errorf("expected exactly one registered route, got %d", dispatcher.Table().Len())
	}
}
