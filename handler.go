package boreas

import (
	"errors"
	"fmt"
)

// ParamKind identifies the declared type of a handler parameter. It is a
// closed set: binding converts textual input with a dedicated, deterministic
// rule per kind rather than through runtime type introspection.
type ParamKind int

const (
	// StringParam passes the raw value through unchanged.
	StringParam ParamKind = iota

	// IntParam parses a base-10 integer.
	IntParam

	// Int64Param parses a base-10 64-bit integer.
	Int64Param

	// Float64Param parses a floating point number.
	Float64Param

	// BoolParam parses a boolean ("true", "false", "1", "0", ...).
	BoolParam

	// UUIDParam parses a canonical-form UUID. Malformed input fails the
	// conversion; it never silently becomes the zero UUID.
	UUIDParam

	// DateParam parses a calendar date in the form "2006-01-02" with no
	// time-of-day component.
	DateParam

	// BodyParam binds the raw WebSocket envelope payload as a
	// json.RawMessage. It is never bound from path or query input.
	BodyParam

	// SessionParam binds the current connection's *Session. Bound by
	// convention, not from user input.
	SessionParam

	// RequestParam binds the current *Request. Bound by convention, not
	// from user input.
	RequestParam
)

// String returns the name of the parameter kind.
func (k ParamKind) String() string {
	switch k {
	case StringParam:
		return "string"
	case IntParam:
		return "int"
	case Int64Param:
		return "int64"
	case Float64Param:
		return "float64"
	case BoolParam:
		return "bool"
	case UUIDParam:
		return "uuid"
	case DateParam:
		return "date"
	case BodyParam:
		return "body"
	case SessionParam:
		return "session"
	case RequestParam:
		return "request"
	}
	return "unknown"
}

// HandlerParam describes one formal parameter of a handler: its name, its
// declared kind, whether it is nullable, and an optional default value used
// verbatim when no path or query value is present.
type HandlerParam struct {
	Name       string
	Kind       ParamKind
	Nullable   bool
	HasDefault bool
	Default    any
}

// Param declares a required handler parameter.
func Param(name string, kind ParamKind) HandlerParam {
	return HandlerParam{Name: name, Kind: kind}
}

// ParamWithDefault declares a parameter that falls back to the given default
// when no path capture or query value is present. The default is used
// verbatim, without conversion.
func ParamWithDefault(name string, kind ParamKind, defaultValue any) HandlerParam {
	return HandlerParam{Name: name, Kind: kind, HasDefault: true, Default: defaultValue}
}

// NullableParam declares a parameter that resolves to nil when absent or
// when the raw value is empty, instead of failing the binding.
func NullableParam(name string, kind ParamKind) HandlerParam {
	return HandlerParam{Name: name, Kind: kind, Nullable: true}
}

// Controller is a unit of invocable application logic. A fresh instance is
// constructed per invocation from the factory given to NewHandler; the
// execution context is injected immediately after construction, before any
// user code runs. Embed ControllerBase to satisfy this interface.
type Controller interface {
	InjectContext(ctx *Context)
}

// BeforeHook is an optional lifecycle hook on a controller. When
// implemented, Before runs exactly once per invocation, after context
// injection and before the target method. Returning an error aborts the
// invocation.
type BeforeHook interface {
	Before() error
}

// ControllerBase provides context storage for controllers. Embed it in
// application controller types:
//
//	type UserController struct {
//	    boreas.ControllerBase
//	}
type ControllerBase struct {
	ctx *Context
}

// InjectContext stores the execution context. Called by the dispatcher
// before any controller code runs.
func (b *ControllerBase) InjectContext(ctx *Context) {
	b.ctx = ctx
}

// Ctx returns the execution context injected for the current invocation.
func (b *ControllerBase) Ctx() *Context {
	return b.ctx
}

// InvokeFunc is the bound invocation strategy of a handler descriptor. It
// receives the freshly constructed controller and the bound argument list
// in declared parameter order.
type InvokeFunc func(controller Controller, args []any) (any, error)

// HandlerDescriptor describes one route's application logic: its ordered
// formal parameter list and a bound invocation strategy. A descriptor is
// created once at registration time and owned by exactly one route.
type HandlerDescriptor struct {
	params  []HandlerParam
	factory func() Controller
	invoke  InvokeFunc
}

// NewHandler creates a handler descriptor. The factory is the handler's
// zero-argument constructor; it is resolved and probed at registration time,
// and registration fails immediately if it is missing or produces nil. The
// invoke function receives the constructed controller and the bound
// arguments in the order params were declared.
func NewHandler(factory func() Controller, invoke InvokeFunc, params ...HandlerParam) (*HandlerDescriptor, error) {
	if factory == nil {
		return nil, errors.New("handler factory must not be nil")
	}
	if probe := factory(); probe == nil {
		return nil, errors.New("handler factory must construct a non-nil controller")
	}
	if invoke == nil {
		return nil, errors.New("handler invoke function must not be nil")
	}

	seen := map[string]bool{}
	for _, param := range params {
		if param.Name == "" && param.Kind != SessionParam && param.Kind != RequestParam {
			return nil, errors.New("handler parameters must have a name")
		}
		if param.Name != "" {
			if seen[param.Name] {
				return nil, fmt.Errorf("duplicate handler parameter %q", param.Name)
			}
			seen[param.Name] = true
		}
	}

	return &HandlerDescriptor{
		params:  params,
		factory: factory,
		invoke:  invoke,
	}, nil
}

// NewFuncHandler creates a handler descriptor from a plain function. This
// is the most common way to define handlers; stateful handlers or those
// needing a Before hook should implement Controller and use NewHandler
// instead.
func NewFuncHandler(fn func(ctx *Context, args []any) (any, error), params ...HandlerParam) (*HandlerDescriptor, error) {
	if fn == nil {
		return nil, errors.New("handler function must not be nil")
	}
	return NewHandler(
		func() Controller { return &funcController{fn: fn} },
		func(controller Controller, args []any) (any, error) {
			fc := controller.(*funcController)
			return fc.fn(fc.Ctx(), args)
		},
		params...,
	)
}

// Params returns the handler's formal parameter list in declaration order.
// The returned slice must not be modified.
func (h *HandlerDescriptor) Params() []HandlerParam {
	return h.params
}

// call runs one invocation: construct, inject, Before hook, target. Panic
// recovery is the dispatcher's concern, one layer above.
func (h *HandlerDescriptor) call(ctx *Context, args []any) (any, error) {
	controller := h.factory()
	controller.InjectContext(ctx)

	if hook, ok := controller.(BeforeHook); ok {
		if err := hook.Before(); err != nil {
			return nil, err
		}
	}

	return h.invoke(controller, args)
}

type funcController struct {
	ControllerBase
	fn func(ctx *Context, args []any) (any, error)
}
