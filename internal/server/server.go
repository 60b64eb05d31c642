// Package server assembles the HTTP application from its parts.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/vagkalosynakis/attributes/internal/config"
	"github.com/vagkalosynakis/attributes/internal/handlers"
	"github.com/vagkalosynakis/attributes/internal/janitor"
	"github.com/vagkalosynakis/attributes/internal/metrics"
	"github.com/vagkalosynakis/attributes/internal/middleware"
	"github.com/vagkalosynakis/attributes/internal/routes"
	"github.com/vagkalosynakis/attributes/internal/service"
	"github.com/vagkalosynakis/attributes/internal/store"
	"github.com/vagkalosynakis/attributes/internal/utils"
)

// Deps are the resources the application runs on. Redis is only needed
// when a redis driver is configured; Metrics defaults to a fresh registry.
type Deps struct {
	Config  *config.Config
	DB      *sqlx.DB
	Redis   *redis.Client
	Log     *logrus.Logger
	Metrics *metrics.Metrics
}

type Server struct {
	Router  chi.Router
	Entries []routes.Entry
	// Cleanup lists the stores the janitor sweeps.
	Cleanup []janitor.Target
	Metrics *metrics.Metrics
}

type rateLimitBackend interface {
	middleware.RateLimitStorage
	janitor.Cleaner
}

type cacheBackend interface {
	middleware.ResponseStorage
	janitor.Cleaner
}

func New(d Deps) (*Server, error) {
	cfg := d.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if d.DB == nil {
		return nil, errors.New("server: no database")
	}
	log := d.Log
	if log == nil {
		log = logrus.New()
	}
	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}

	limits, err := rateLimitStorage(cfg.RateLimit.Driver, d)
	if err != nil {
		return nil, err
	}
	responses, err := cacheStorage(cfg.Cache.Driver, d)
	if err != nil {
		return nil, err
	}

	userStore := store.NewUserStore(d.DB)
	postStore := store.NewPostStore(d.DB)
	users := service.NewUserService(userStore)
	posts := service.NewPostService(postStore, userStore)

	h := handlers.NewHandler(users, posts, handlers.Options{
		CacheTTL:     cfg.Cache.DefaultTTL,
		AccessSecret: cfg.Auth.Secret,
		AccessTTL:    cfg.Auth.TokenTTL,
	}, log.WithField("component", "handlers"))

	reg := routes.NewRegistry()
	reg.Register("request_id", middleware.RequestID)
	reg.Register("logging", middleware.Logging(log.WithField("component", "http")))
	reg.Register("metrics", middleware.Metrics(m))
	reg.Register("auth", middleware.Auth(cfg.Auth.Secret))
	reg.Group("web", "request_id", "logging")
	reg.Group("api", "request_id", "logging", "metrics")

	limiter := middleware.NewRateLimiter(limits, log.WithField("component", "ratelimit"), m)
	cache := middleware.NewResponseCache(responses, log.WithField("component", "cache"), m)
	registrar := routes.NewRegistrar(reg, limiter.Limit, cache.TTL)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(log.WithField("component", "recover")))
	r.Use(middleware.Throttle(cfg.Throttle.RPS, cfg.Throttle.Burst))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.JSONError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Handle("/metrics", m.Handler())
	r.Get("/healthz", healthz(d.DB))

	if err := registrar.Mount(r, h.Controllers()...); err != nil {
		return nil, err
	}

	return &Server{
		Router:  r,
		Entries: registrar.Entries(),
		Cleanup: []janitor.Target{
			{Name: "rate_limits", Cleaner: limits},
			{Name: "cache_responses", Cleaner: responses},
		},
		Metrics: m,
	}, nil
}

func rateLimitStorage(driver string, d Deps) (rateLimitBackend, error) {
	if driver == config.DriverRedis {
		if d.Redis == nil {
			return nil, errors.New("server: redis rate limit driver without a redis client")
		}
		return store.NewRedisRateLimitStore(d.Redis), nil
	}
	return store.NewRateLimitStore(d.DB), nil
}

func cacheStorage(driver string, d Deps) (cacheBackend, error) {
	if driver == config.DriverRedis {
		if d.Redis == nil {
			return nil, errors.New("server: redis cache driver without a redis client")
		}
		return store.NewRedisCacheStore(d.Redis), nil
	}
	return store.NewCacheStore(d.DB), nil
}

func healthz(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			utils.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}
