// Package routes holds the explicit route tables handlers publish and the
// registrar that mounts them with their middleware.
package routes

import (
	"net/http"
	"time"
)

// Middleware is the chi/net-http middleware shape.
type Middleware = func(http.Handler) http.Handler

// RateLimit allows Amount requests per Interval for each client.
type RateLimit struct {
	Amount   int
	Interval time.Duration
}

// PerMinute is a convenience for the common case.
func PerMinute(amount int) *RateLimit {
	return &RateLimit{Amount: amount, Interval: time.Minute}
}

// Cache stores successful responses for TTL.
type Cache struct {
	TTL time.Duration
}

// Route is one endpoint with its middleware settings. Middleware and
// Groups name entries of a Registry; Without removes names from the
// resolved list.
type Route struct {
	Method     string
	Path       string
	Name       string
	Handler    http.HandlerFunc
	Middleware []string
	Groups     []string
	Without    []string
	RateLimit  *RateLimit
	Cache      *Cache
}

// Controller groups routes under a prefix with shared middleware. Its
// Without only applies to its own Middleware and Groups.
type Controller struct {
	Name       string
	Prefix     string
	Middleware []string
	Groups     []string
	Without    []string
	Routes     []Route
}

// Entry describes a mounted route.
type Entry struct {
	Method     string
	Path       string
	Handler    string
	Middleware []string
}
