package routes

import (
	"fmt"
	"sort"
)

// Registry maps middleware names and group names to implementations.
type Registry struct {
	middleware map[string]Middleware
	groups     map[string][]string
}

func NewRegistry() *Registry {
	return &Registry{
		middleware: make(map[string]Middleware),
		groups:     make(map[string][]string),
	}
}

// Register adds or replaces a named middleware.
func (r *Registry) Register(name string, mw Middleware) {
	r.middleware[name] = mw
}

// Group defines name as the ordered list of members.
func (r *Registry) Group(name string, members ...string) {
	r.groups[name] = append([]string(nil), members...)
}

func (r *Registry) Lookup(name string) (Middleware, bool) {
	mw, ok := r.middleware[name]
	return mw, ok
}

// Expand returns the members of the named groups in order.
func (r *Registry) Expand(groups ...string) ([]string, error) {
	var out []string
	for _, g := range groups {
		members, ok := r.groups[g]
		if !ok {
			return nil, fmt.Errorf("routes: unknown middleware group %q", g)
		}
		out = append(out, members...)
	}
	return out, nil
}

// Names lists the registered middleware, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.middleware))
	for n := range r.middleware {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
