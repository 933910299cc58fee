package boreas

import (
	"fmt"
	"strings"
)

// SocketMethod is the pseudo-method under which WebSocket envelope routes
// are registered and matched. Envelope urls resolve against the same route
// table as HTTP paths, keyed by this method.
const SocketMethod = "WEBSOCKET"

// TableMode selects the storage and matching strategy of a RouteTable. A
// table is in exactly one mode for its entire lifetime; the mode is fixed
// at construction, before the first concurrent lookup, and never changes.
type TableMode int

const (
	// LiteralMode stores routes in a hash map keyed by method and exact
	// path. Lookup is O(1); pattern syntax is rejected at registration.
	LiteralMode TableMode = iota

	// PatternMode keeps routes in registration order and matches compiled
	// templates by linear scan. The first matching route wins.
	PatternMode
)

// RouteMatch is the result of a successful table lookup: the matched route
// and, in pattern mode, the parameter values captured from the path.
type RouteMatch struct {
	Route  *RouteDescriptor
	Params PathParams
}

// RouteTable owns all registered route descriptors and answers which route
// matches a request. All Add calls must happen on a single goroutine before
// traffic starts; after that every access is a pure read and no lock is
// taken on the match path.
type RouteTable struct {
	mode    TableMode
	byKey   map[string]*RouteDescriptor
	ordered []*RouteDescriptor
}

// NewRouteTable creates an empty route table in the given mode.
func NewRouteTable(mode TableMode) *RouteTable {
	table := &RouteTable{mode: mode}
	if mode == LiteralMode {
		table.byKey = map[string]*RouteDescriptor{}
	}
	return table
}

// Mode returns the table's routing mode.
func (t *RouteTable) Mode() TableMode {
	return t.mode
}

// Add registers a route. In literal mode a duplicate method and path is a
// registration error and leaves the table exactly as it was. In pattern
// mode routes are tried in the order they were added, so more specific
// routes must be added before more general ones.
func (t *RouteTable) Add(method string, pathTemplate string, handler *HandlerDescriptor, queryStringMapping bool) (*RouteDescriptor, error) {
	if method == "" {
		return nil, fmt.Errorf("cannot register route %q: method must not be empty", pathTemplate)
	}
	if handler == nil {
		return nil, fmt.Errorf("cannot register route %s %s: handler must not be nil", method, pathTemplate)
	}

	var pattern *Pattern
	var err error
	if t.mode == LiteralMode {
		pattern, err = NewLiteralPattern(pathTemplate)
	} else {
		pattern, err = NewPattern(pathTemplate)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot register route %s %s: %w", method, pathTemplate, err)
	}

	route := &RouteDescriptor{
		method:             method,
		pattern:            pattern,
		handler:            handler,
		queryStringMapping: queryStringMapping,
	}

	if t.mode == LiteralMode {
		key := routeKey(method, pathTemplate)
		if _, ok := t.byKey[key]; ok {
			return nil, fmt.Errorf("cannot register route %s %s: a route with the same method and path already exists", method, pathTemplate)
		}
		t.byKey[key] = route
	} else {
		t.ordered = append(t.ordered, route)
	}

	return route, nil
}

// Match answers which route handles the given method and absolute path.
// Literal mode performs a single map lookup; pattern mode scans registered
// routes in order, testing each candidate whose method matches
// case-insensitively, and returns the first success. Match never mutates
// the table.
func (t *RouteTable) Match(method string, path string) (*RouteMatch, bool) {
	if t.mode == LiteralMode {
		route, ok := t.byKey[routeKey(method, path)]
		if !ok {
			return nil, false
		}
		return &RouteMatch{Route: route}, true
	}

	for _, route := range t.ordered {
		if !strings.EqualFold(route.method, method) {
			continue
		}
		if params, ok := route.pattern.Match(path); ok {
			return &RouteMatch{Route: route, Params: params}, true
		}
	}

	return nil, false
}

// Routes returns all registered route descriptors. In pattern mode the
// order is registration order. The returned slice must not be modified.
func (t *RouteTable) Routes() []*RouteDescriptor {
	if t.mode == PatternMode {
		return t.ordered
	}
	routes := make([]*RouteDescriptor, 0, len(t.byKey))
	for _, route := range t.byKey {
		routes = append(routes, route)
	}
	return routes
}

// Len returns the number of registered routes.
func (t *RouteTable) Len() int {
	if t.mode == LiteralMode {
		return len(t.byKey)
	}
	return len(t.ordered)
}

// Clear removes all routes. It exists only for reconfiguration between
// stop/start cycles and must never run while the table is serving lookups.
func (t *RouteTable) Clear() {
	if t.mode == LiteralMode {
		t.byKey = map[string]*RouteDescriptor{}
		return
	}
	t.ordered = nil
}

func routeKey(method string, path string) string {
	return strings.ToUpper(method) + path
}
