package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vagkalosynakis/attributes/internal/config"
	"github.com/vagkalosynakis/attributes/internal/db"
	"github.com/vagkalosynakis/attributes/internal/janitor"
	"github.com/vagkalosynakis/attributes/internal/routes"
	"github.com/vagkalosynakis/attributes/internal/server"
	"github.com/vagkalosynakis/attributes/internal/store"
)

func main() {
	listRoutes := flag.Bool("routes", false, "print the route table and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}

	cfg, err := config.Load(getenv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log, closer, err := config.NewLogger(cfg.Log)
	if err != nil {
		logrus.Fatalf("logger: %v", err)
	}
	defer closer.Close()

	if *listRoutes {
		if err := printRoutes(os.Stdout, cfg, log); err != nil {
			log.Fatalf("routes: %v", err)
		}
		return
	}

	ctx := context.Background()

	dbConn, err := db.Connect(ctx, db.Options{
		DSN:         cfg.Database.DSN,
		MaxOpen:     cfg.Database.MaxOpen,
		MaxIdle:     cfg.Database.MaxIdle,
		MaxLifetime: cfg.Database.MaxLifetime,
	})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer dbConn.Close()

	if cfg.Database.Migrate {
		if err := db.Migrate(dbConn); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
	}
	if cfg.Database.Seed {
		seeded, err := db.Seed(ctx, dbConn)
		if err != nil {
			log.Fatalf("db seed: %v", err)
		}
		if seeded {
			log.Info("sample data inserted")
		}
	}

	var rdb *redis.Client
	if cfg.Cache.Driver == config.DriverRedis || cfg.RateLimit.Driver == config.DriverRedis {
		rdb, err = store.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
	}

	srv, err := server.New(server.Deps{Config: cfg, DB: dbConn, Redis: rdb, Log: log})
	if err != nil {
		log.Fatalf("server: %v", err)
	}

	sweeper, err := janitor.New(cfg.Janitor.Schedule, log.WithField("component", "janitor"), srv.Metrics, srv.Cleanup...)
	if err != nil {
		log.Fatalf("janitor: %v", err)
	}
	sweeper.Start()

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Router,
	}

	go func() {
		log.Infof("listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	sweeper.Stop(shutdownCtx)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
		return
	}

	log.Info("server exited")
}

// printRoutes builds the application on a throwaway in-memory database and
// prints its route table. The configured database and Redis are not used.
func printRoutes(w io.Writer, cfg *config.Config, log *logrus.Logger) error {
	conn, err := db.Connect(context.Background(), db.Options{DSN: ":memory:"})
	if err != nil {
		return err
	}
	defer conn.Close()

	listing := *cfg
	listing.Cache.Driver = config.DriverSQL
	listing.RateLimit.Driver = config.DriverSQL

	srv, err := server.New(server.Deps{Config: &listing, DB: conn, Log: log})
	if err != nil {
		return err
	}
	return routes.Print(w, srv.Entries)
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
