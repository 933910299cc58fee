package boreas

import (
	"encoding/json"
)

// RouteDescriptor is the immutable record of one registered route: the HTTP
// verb (or the WEBSOCKET pseudo-verb), the compiled pattern, the handler
// descriptor, and whether query-string mapping is enabled for binding.
// Route descriptors are created during the registration phase and never
// mutated afterwards, which is what allows the match path to read them
// without locking.
type RouteDescriptor struct {
	method             string
	pattern            *Pattern
	handler            *HandlerDescriptor
	queryStringMapping bool
}

// Method returns the route's method as declared at registration.
func (r *RouteDescriptor) Method() string {
	return r.method
}

// Pattern returns the route's compiled pattern.
func (r *RouteDescriptor) Pattern() *Pattern {
	return r.pattern
}

// Handler returns the handler descriptor bound to this route. A handler
// descriptor is owned by exactly one route and never shared.
func (r *RouteDescriptor) Handler() *HandlerDescriptor {
	return r.handler
}

// QueryStringMapping reports whether query-string values participate in
// parameter binding for this route.
func (r *RouteDescriptor) QueryStringMapping() bool {
	return r.queryStringMapping
}

// MarshalJSON returns the JSON representation of the route descriptor. This
// is used by gateway frameworks for service discovery; the handler itself is
// not serializable and is omitted.
func (r *RouteDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Method  string
		Pattern string
	}{
		Method:  r.method,
		Pattern: r.pattern.String(),
	})
}
