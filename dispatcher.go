package boreas

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
)

// Dispatcher is the per-request orchestrator: it asks the route table for a
// match, binds parameters through the matched route, executes the handler,
// and returns the raw result to the transport layer. It also owns the
// session registry for registered WebSocket connections.
//
// All AddRoute calls must happen on a single goroutine before the server
// begins accepting connections. After that the dispatcher is read-only and
// safe for arbitrary concurrent use.
type Dispatcher struct {
	config   *Config
	table    *RouteTable
	registry *Registry
}

// NewDispatcher creates a dispatcher with the given configuration. A nil
// config is equivalent to the zero Config: literal routing, no query-string
// mapping, no token validator.
func NewDispatcher(config *Config) *Dispatcher {
	if config == nil {
		config = &Config{}
	}
	mode := LiteralMode
	if config.PatternRouting {
		mode = PatternMode
	}
	return &Dispatcher{
		config:   config,
		table:    NewRouteTable(mode),
		registry: NewRegistry(),
	}
}

// RouteOption adjusts per-route settings at registration time.
type RouteOption func(*routeOptions)

type routeOptions struct {
	queryStringMapping bool
}

// WithQueryMapping enables query-string parameter binding for the route
// regardless of the config default.
func WithQueryMapping() RouteOption {
	return func(o *routeOptions) { o.queryStringMapping = true }
}

// WithoutQueryMapping disables query-string parameter binding for the route
// regardless of the config default.
func WithoutQueryMapping() RouteOption {
	return func(o *routeOptions) { o.queryStringMapping = false }
}

// AddRoute registers one route. It fails with a descriptive error if the
// template is malformed for the table's mode, if a duplicate literal key
// exists, or if the handler is nil. A failed registration leaves the table
// exactly as it was.
func (d *Dispatcher) AddRoute(method string, pathTemplate string, handler *HandlerDescriptor, opts ...RouteOption) error {
	options := routeOptions{queryStringMapping: d.config.QueryStringMapping}
	for _, opt := range opts {
		opt(&options)
	}
	_, err := d.table.Add(method, pathTemplate, handler, options.queryStringMapping)
	return err
}

// Table returns the dispatcher's route table.
func (d *Dispatcher) Table() *RouteTable {
	return d.table
}

// Registry returns the session registry tracking registered WebSocket
// connections.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch resolves and executes the handler for a transport-neutral
// request. It returns the handler's raw result, ErrNotFound when no route
// matches, a *BindingError when parameter binding fails, or an
// *InvocationError when the handler faults. The result is opaque to the
// dispatcher; the transport layer decides whether it is a ready-made
// response or a value to serialize.
func (d *Dispatcher) Dispatch(request *Request) (any, error) {
	return d.dispatch(request, nil)
}

// DispatchEnvelope handles one WebSocket message for a connection. A
// registration envelope (null url) validates the jwt if one is present,
// attaches the token to the session, and adds the session to the registry.
// Any other url is resolved as "WEBSOCKET" + url against the route table;
// an unregistered url is a no-op, not an error. The second return value
// reports whether the envelope was handled at all.
func (d *Dispatcher) DispatchEnvelope(ctx context.Context, session *Session, data []byte) (any, bool, error) {
	envelope, err := ParseEnvelope(data)
	if err != nil {
		return nil, false, err
	}

	if envelope.IsRegistration() {
		return nil, true, d.registerSession(ctx, session, envelope)
	}

	match, ok := d.table.Match(SocketMethod, *envelope.URL)
	if !ok {
		return nil, false, nil
	}

	request := &Request{
		Method: SocketMethod,
		Path:   *envelope.URL,
		Body:   envelope.Body,
		ctx:    ctx,
	}
	if session != nil {
		request.Header = session.Headers()
	}

	result, err := d.execute(match, request, session)
	return result, true, err
}

func (d *Dispatcher) registerSession(ctx context.Context, session *Session, envelope *Envelope) error {
	if envelope.JWT != nil && *envelope.JWT != "" {
		if d.config.ValidateToken != nil {
			if _, err := d.config.ValidateToken(ctx, *envelope.JWT); err != nil {
				return fmt.Errorf("connection registration rejected: %w", err)
			}
		}
		session.SetToken(*envelope.JWT)
	}
	d.registry.Add(session)
	return nil
}

func (d *Dispatcher) dispatch(request *Request, session *Session) (any, error) {
	match, ok := d.table.Match(request.Method, request.Path)
	if !ok {
		return nil, ErrNotFound
	}
	return d.execute(match, request, session)
}

// execute runs the invocation lifecycle for a matched route: bind, fresh
// controller, context injection, Before hook, target call. Faults at any
// stage after the match are contained here and never reach the serving
// loop of other requests.
func (d *Dispatcher) execute(match *RouteMatch, request *Request, session *Session) (any, error) {
	ctx := newContext(session, request, d.config)

	args, err := bindArguments(match.Route, match.Params, request, ctx)
	if err != nil {
		return nil, err
	}

	var result any
	invokeErr := execWithRecovery(func() error {
		r, err := match.Route.Handler().call(ctx, args)
		result = r
		return err
	})
	if invokeErr != nil {
		return nil, invokeErr
	}

	return result, nil
}

// execWithRecovery converts handler panics and returned errors into
// *InvocationError. Panics carry the captured handler stack, trimmed of the
// recovery frames.
func execWithRecovery(fn func() error) (err error) {
	defer func() {
		if maybeErr := recover(); maybeErr != nil {
			var cause error
			if e, ok := maybeErr.(error); ok {
				cause = e
			} else {
				cause = fmt.Errorf("%v", maybeErr)
			}

			stack := string(debug.Stack())
			stackLines := strings.Split(stack, "\n")
			if len(stackLines) > 6 {
				stack = strings.Join(stackLines[6:], "\n")
			}

			err = &InvocationError{Err: cause, Stack: stack}
		}
	}()

	if callErr := fn(); callErr != nil {
		return &InvocationError{Err: callErr}
	}
	return nil
}
