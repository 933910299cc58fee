package boreas

import (
	"context"
	"strings"
)

// Context is the per-invocation execution context injected into a
// controller before any of its code runs. It carries the current session
// (nil for plain HTTP requests on unregistered connections), the
// transport-neutral request, and lazily resolved identity state.
//
// A context is confined to the single request or connection that produced
// it and requires no synchronization.
type Context struct {
	// Session is the current connection's session, or nil when the request
	// did not arrive over a registered WebSocket connection.
	Session *Session

	// Request is the transport-neutral request being dispatched.
	Request *Request

	config *Config

	identityResolved bool
	identity         *Identity
	identityErr      error
}

func newContext(session *Session, request *Request, config *Config) *Context {
	return &Context{
		Session: session,
		Request: request,
		config:  config,
	}
}

// Context returns the stdlib context carried by the request. Cancellation
// from the surrounding transport propagates through it into handler logic.
func (c *Context) Context() context.Context {
	return c.Request.Context()
}

// Set stores a per-connection value on the session. It is a no-op without
// a session.
func (c *Context) Set(key string, value any) {
	if c.Session != nil {
		c.Session.Set(key, value)
	}
}

// Get returns a per-connection value from the session, or nil without a
// session.
func (c *Context) Get(key string) any {
	if c.Session == nil {
		return nil
	}
	return c.Session.Get(key)
}

// Identity resolves and returns the current authenticated identity. The
// bearer token is taken from, in order: the token held by the session, a
// "token" query value, and the Authorization header. Resolution happens on
// first access and the result, success or failure, is cached for the rest
// of the invocation, so the token is validated at most once and only if
// actually used.
func (c *Context) Identity() (*Identity, error) {
	if c.identityResolved {
		return c.identity, c.identityErr
	}
	c.identityResolved = true

	token, ok := c.bearerToken()
	if !ok {
		c.identityErr = ErrNoToken
		return nil, c.identityErr
	}

	if c.config == nil || c.config.ValidateToken == nil {
		c.identityErr = ErrNoToken
		return nil, c.identityErr
	}

	c.identity, c.identityErr = c.config.ValidateToken(c.Context(), token)
	return c.identity, c.identityErr
}

func (c *Context) bearerToken() (string, bool) {
	if c.Session != nil {
		if token := c.Session.Token(); token != "" {
			return token, true
		}
	}

	if token, ok := c.Request.QueryGet("token"); ok && token != "" {
		return token, true
	}

	if c.Request.Header != nil {
		authorization := c.Request.Header.Get("Authorization")
		if strings.HasPrefix(authorization, "Bearer ") {
			return strings.TrimPrefix(authorization, "Bearer "), true
		}
	}

	return "", false
}
