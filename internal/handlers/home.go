package handlers

import (
	"net/http"
	"time"

	"github.com/vagkalosynakis/attributes/internal/routes"
	"github.com/vagkalosynakis/attributes/internal/utils"
)

const timestampLayout = "2006-01-02 15:04:05"

type HomeHandler struct {
	now func() time.Time
}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{now: time.Now}
}

func (h *HomeHandler) Routes() routes.Controller {
	return routes.Controller{
		Name:   "home",
		Groups: []string{"web"},
		Routes: []routes.Route{
			{Method: http.MethodGet, Path: "/", Name: "index", Handler: h.Index},
			{Method: http.MethodGet, Path: "/about", Name: "about", Handler: h.About, Cache: &routes.Cache{TTL: time.Minute}},
		},
	}
}

// TestRoutes are three ways of attaching the same logging middleware.
func (h *HomeHandler) TestRoutes() routes.Controller {
	return routes.Controller{
		Name: "test",
		Routes: []routes.Route{
			{Method: http.MethodGet, Path: "/test1", Name: "explicit", Handler: h.Test, Middleware: []string{"logging"}},
			{Method: http.MethodGet, Path: "/test2", Name: "group", Handler: h.Test, Groups: []string{"web"}},
			{Method: http.MethodGet, Path: "/test3", Name: "group_without_logging", Handler: h.Test, Groups: []string{"web"}, Without: []string{"logging"}},
		},
	}
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.welcome(w, r, "Welcome to the Home page!")
}

func (h *HomeHandler) Test(w http.ResponseWriter, r *http.Request) {
	h.welcome(w, r, "Welcome to the Test page!")
}

func (h *HomeHandler) About(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]any{
		"message":     "About page",
		"description": "A small users and posts JSON API with per-route middleware",
		"version":     "1.0.0",
	})
}

func (h *HomeHandler) welcome(w http.ResponseWriter, r *http.Request, msg string) {
	utils.JSON(w, http.StatusOK, map[string]any{
		"message":   msg,
		"timestamp": h.now().Format(timestampLayout),
		"method":    r.Method,
		"uri":       requestURL(r),
	})
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
