package boreas

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Dispatch when no registered route matches the
// request method and path. The transport layer is expected to map it to a
// 404-equivalent response. It is an expected outcome, not a fault.
var ErrNotFound = errors.New("no route matches the request")

// ErrParamRequired indicates that a required handler parameter had no path
// capture, no query value, and no declared default.
var ErrParamRequired = errors.New("required parameter is missing")

// ErrNoToken indicates that identity resolution found no bearer token on the
// session, the query string, or the Authorization header.
var ErrNoToken = errors.New("no bearer token present on the request")

// ErrSessionNotFound is returned by Registry.Send when the target session is
// not registered locally or on any bridged node.
var ErrSessionNotFound = errors.New("session not found")

// BindingError reports a failure to produce a typed argument for a handler
// parameter. It distinguishes an absent required value (Err wraps
// ErrParamRequired) from a value that was present but failed type
// conversion.
type BindingError struct {
	// Param is the name of the handler parameter that failed to bind.
	Param string

	// Raw is the textual value that failed conversion. Empty when the
	// parameter was absent.
	Raw string

	// Err is the underlying cause.
	Err error
}

func (e *BindingError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("cannot bind parameter %q: %s", e.Param, e.Err)
	}
	return fmt.Sprintf("cannot bind parameter %q from %q: %s", e.Param, e.Raw, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// InvocationError reports a fault raised by handler logic, either as a
// returned error or as a recovered panic. For panics, Stack holds the
// captured handler stack.
type InvocationError struct {
	Err   error
	Stack string
}

func (e *InvocationError) Error() string {
	return "handler invocation failed: " + e.Err.Error()
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
