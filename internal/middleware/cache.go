package middleware

import (
	"context"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vagkalosynakis/attributes/internal/metrics"
	"github.com/vagkalosynakis/attributes/internal/models"
	"golang.org/x/crypto/blake2b"
)

const CacheStatusHeader = "X-Cache-Status"

type ResponseStorage interface {
	Get(ctx context.Context, key string) (*models.CachedResponse, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// ResponseCache serves stored JSON bodies for repeated requests until they
// expire. Only 2xx responses are stored.
type ResponseCache struct {
	storage ResponseStorage
	log     *logrus.Entry
	metrics *metrics.Metrics
}

func NewResponseCache(storage ResponseStorage, log *logrus.Entry, m *metrics.Metrics) *ResponseCache {
	return &ResponseCache{storage: storage, log: log, metrics: m}
}

func (c *ResponseCache) TTL(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := CacheKey(r)

			entry, err := c.storage.Get(r.Context(), key)
			if err != nil {
				c.log.WithError(err).WithField("path", r.URL.Path).Warn("cache lookup failed")
			}
			if entry != nil {
				c.observe(true)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(CacheStatusHeader, "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(entry.Body)
				return
			}
			c.observe(false)

			buf := newBufferedWriter()
			next.ServeHTTP(buf, r)

			if status := buf.statusCode(); status >= 200 && status < 300 {
				if err := c.storage.Set(r.Context(), key, buf.body.Bytes(), ttl); err != nil {
					c.log.WithError(err).WithField("path", r.URL.Path).Warn("cache store failed")
				}
				buf.header.Set(CacheStatusHeader, "MISS")
			}
			buf.flush(w)
		})
	}
}

func (c *ResponseCache) observe(hit bool) {
	if c.metrics != nil {
		c.metrics.CacheLookup(hit)
	}
}

// CacheKey fingerprints method, path and query string.
func CacheKey(r *http.Request) string {
	data := r.Method + ":" + r.URL.Path
	if r.URL.RawQuery != "" {
		data += "?" + r.URL.RawQuery
	}
	sum := blake2b.Sum256([]byte(data))
	return "cache:" + hex.EncodeToString(sum[:])
}
