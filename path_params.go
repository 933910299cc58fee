package boreas

import "strings"

// PathParams represents the parameters captured from a request path by a
// compiled route pattern. Keys are the parameter names declared in the
// route template.
type PathParams map[string]string

// Get returns the value of a parameter by key. The lookup is
// case-insensitive ('ID' and 'id' match the same parameter). Returns an
// empty string if the key doesn't exist.
func (p PathParams) Get(key string) string {
	for k, v := range p {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// Has reports whether a parameter with the given key was captured. Unlike
// Get, the lookup is exact: binding only consults captures whose name
// matches the declared handler parameter name exactly.
func (p PathParams) Has(key string) bool {
	_, ok := p[key]
	return ok
}
