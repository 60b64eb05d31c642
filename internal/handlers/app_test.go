package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/vagkalosynakis/attributes/internal/config"
	"github.com/vagkalosynakis/attributes/internal/db"
	"github.com/vagkalosynakis/attributes/internal/server"
)

type app struct {
	t      *testing.T
	db     *sqlx.DB
	server *server.Server
}

func newApp(t *testing.T, configure ...func(*config.Config)) *app {
	t.Helper()

	cfg := config.Default()
	cfg.Database.DSN = ":memory:"
	for _, fn := range configure {
		fn(&cfg)
	}

	conn, err := db.Connect(context.Background(), db.Options{DSN: cfg.Database.DSN})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(conn))

	log, _ := test.NewNullLogger()
	srv, err := server.New(server.Deps{Config: &cfg, DB: conn, Log: log})
	require.NoError(t, err)

	return &app{t: t, db: conn, server: srv}
}

func (a *app) seed() {
	a.t.Helper()
	_, err := db.Seed(context.Background(), a.db)
	require.NoError(a.t, err)
}

type response struct {
	Code   int
	Header http.Header
	Body   string
}

func (r response) get(path string) gjson.Result { return gjson.Get(r.Body, path) }

func (a *app) do(method, target, body string, headers ...string) response {
	a.t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.server.Router.ServeHTTP(w, req)
	return response{Code: w.Code, Header: w.Header(), Body: w.Body.String()}
}
