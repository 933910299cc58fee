package boreas

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Request is the transport-neutral request shape consumed by the
// dispatcher: a method, an absolute path, and decoded query values for
// HTTP, or the WEBSOCKET pseudo-method with the envelope url and payload
// for socket messages. The transport layer builds it from whatever it
// parsed off the wire.
type Request struct {
	// Method is the HTTP verb, or SocketMethod for envelope dispatch.
	Method string

	// Path is the absolute request path (or the envelope url). For HTTP
	// requests it is the escaped form; captures are decoded during binding.
	Path string

	// Query holds the decoded query-string values. For repeated keys the
	// first value wins.
	Query map[string]string

	// Header carries the request headers, if the transport has any. Used
	// by identity resolution for the Authorization header.
	Header http.Header

	// Body is the raw WebSocket envelope payload. Nil for HTTP requests.
	Body json.RawMessage

	ctx context.Context
}

// NewRequest creates a request descriptor for the given method and path.
func NewRequest(method string, path string, query map[string]string) *Request {
	return &Request{Method: method, Path: path, Query: query}
}

// RequestFromHTTP builds a neutral request descriptor from a parsed HTTP
// request. The path is taken in escaped form: net/http decodes URL.Path,
// and binding decodes captures, so matching against the decoded path would
// decode every capture twice.
func RequestFromHTTP(httpRequest *http.Request) *Request {
	query := map[string]string{}
	for key, values := range httpRequest.URL.Query() {
		if len(values) != 0 {
			query[key] = values[0]
		} else {
			query[key] = ""
		}
	}
	return &Request{
		Method: httpRequest.Method,
		Path:   httpRequest.URL.EscapedPath(),
		Query:  query,
		Header: httpRequest.Header,
		ctx:    httpRequest.Context(),
	}
}

// WithContext sets the context that cancellation propagates through. The
// dispatcher does not intercept or suppress it; it is handed to the invoked
// logic via the execution context.
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// Context returns the request's context, defaulting to
// context.Background().
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// QueryGet looks up a query value by key, case-insensitively. The second
// return value reports presence; a present-but-empty value still counts as
// present. When several case variants of the key are present, an exact-case
// key wins; otherwise the lexicographically smallest matching key is used,
// so repeated lookups always return the same value.
func (r *Request) QueryGet(key string) (string, bool) {
	if value, ok := r.Query[key]; ok {
		return value, true
	}

	matchedKey := ""
	value := ""
	found := false
	for k, v := range r.Query {
		if !strings.EqualFold(k, key) {
			continue
		}
		if !found || k < matchedKey {
			matchedKey = k
			value = v
			found = true
		}
	}
	return value, found
}
