package routes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

type (
	RateLimitFactory func(amount int, interval time.Duration) Middleware
	CacheFactory     func(ttl time.Duration) Middleware
)

// Registrar resolves each route's middleware chain and mounts it on a chi
// router. The chain is the controller middleware, then the route's own
// middleware and groups, then the rate limit and finally the cache.
type Registrar struct {
	registry  *Registry
	rateLimit RateLimitFactory
	cache     CacheFactory
	entries   []Entry
}

func NewRegistrar(registry *Registry, rateLimit RateLimitFactory, cache CacheFactory) *Registrar {
	return &Registrar{registry: registry, rateLimit: rateLimit, cache: cache}
}

// Mount registers every route of the controllers on r. It stops at the
// first route that cannot be resolved.
func (rr *Registrar) Mount(r chi.Router, controllers ...Controller) error {
	for _, c := range controllers {
		for _, route := range c.Routes {
			if err := rr.mountRoute(r, c, route); err != nil {
				return fmt.Errorf("routes: %s %s: %w", route.Method, BuildPath(c.Prefix, route.Path), err)
			}
		}
	}
	return nil
}

func (rr *Registrar) mountRoute(r chi.Router, c Controller, route Route) error {
	if route.Handler == nil {
		return errors.New("no handler")
	}
	method := strings.ToUpper(route.Method)
	if method == "" {
		return errors.New("no method")
	}

	names, err := rr.resolve(c, route)
	if err != nil {
		return err
	}

	chain := make([]Middleware, 0, len(names)+2)
	for _, n := range names {
		mw, ok := rr.registry.Lookup(n)
		if !ok {
			return fmt.Errorf("unknown middleware %q", n)
		}
		chain = append(chain, mw)
	}

	listed := append([]string(nil), names...)

	if rl := route.RateLimit; rl != nil {
		if rl.Amount <= 0 || rl.Interval < time.Second {
			return fmt.Errorf("invalid rate limit %d per %s", rl.Amount, rl.Interval)
		}
		if rr.rateLimit == nil {
			return errors.New("rate limiting is not configured")
		}
		chain = append(chain, rr.rateLimit(rl.Amount, rl.Interval))
		listed = append(listed, fmt.Sprintf("rate_limit(%d/%s)", rl.Amount, rl.Interval))
	}

	if cc := route.Cache; cc != nil {
		if cc.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl %s", cc.TTL)
		}
		if rr.cache == nil {
			return errors.New("response cache is not configured")
		}
		chain = append(chain, rr.cache(cc.TTL))
		listed = append(listed, fmt.Sprintf("cache(%s)", cc.TTL))
	}

	path := BuildPath(c.Prefix, route.Path)
	r.With(chain...).Method(method, path, route.Handler)

	name := route.Name
	if c.Name != "" {
		name = c.Name + "." + name
	}
	rr.entries = append(rr.entries, Entry{Method: method, Path: path, Handler: name, Middleware: listed})
	return nil
}

// resolve returns the ordered, de-duplicated middleware names for route.
func (rr *Registrar) resolve(c Controller, route Route) ([]string, error) {
	shared, err := rr.expand(c.Middleware, c.Groups)
	if err != nil {
		return nil, err
	}
	own, err := rr.expand(route.Middleware, route.Groups)
	if err != nil {
		return nil, err
	}

	names := append(without(shared, c.Without), without(own, route.Without)...)
	return dedupe(names), nil
}

func (rr *Registrar) expand(names, groups []string) ([]string, error) {
	grouped, err := rr.registry.Expand(groups...)
	if err != nil {
		return nil, err
	}
	return append(append([]string(nil), names...), grouped...), nil
}

// Entries returns the mounted routes in registration order.
func (rr *Registrar) Entries() []Entry {
	return append([]Entry(nil), rr.entries...)
}

// BuildPath joins prefix and path into a route pattern with a single
// leading slash and no trailing one. An empty result is "/".
func BuildPath(prefix, path string) string {
	var parts []string
	for _, p := range []string{prefix, path} {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}
	return "/" + strings.Join(parts, "/")
}

func without(names, excluded []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !contains(excluded, n) {
			out = append(out, n)
		}
	}
	return out
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
