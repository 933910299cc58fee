package boreas

import "context"

// Identity is the authenticated principal attached to a request, produced
// by the configured token validator.
type Identity struct {
	// Subject identifies the principal.
	Subject string

	// Claims carries any additional token claims the validator chose to
	// expose.
	Claims map[string]any
}

// TokenValidator validates a bearer token and produces the identity it
// represents. Token issuing and the identity-provider protocol flow are
// external concerns; the dispatcher only calls this collaborator, lazily
// and at most once per invocation.
type TokenValidator func(ctx context.Context, token string) (*Identity, error)

// Config carries the dispatcher's construction-time settings. It replaces
// any process-wide state: multiple independently configured dispatchers are
// safe in one process. All fields are read-only once the dispatcher starts
// serving.
type Config struct {
	// PatternRouting selects pattern mode for the whole route table. When
	// false (the default) the table is in literal mode: exact-path hash
	// lookup, no '{name}' or '*' syntax.
	PatternRouting bool

	// QueryStringMapping is the default for routes registered without an
	// explicit option: whether query-string values participate in
	// parameter binding.
	QueryStringMapping bool

	// ValidateToken resolves bearer tokens into identities. When nil,
	// Context.Identity returns an error for any request that presents a
	// token.
	ValidateToken TokenValidator

	// Origins are the origin patterns allowed during the WebSocket
	// handshake. Empty means all origins ("*").
	Origins []string
}
