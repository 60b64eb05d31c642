package middleware

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vagkalosynakis/attributes/internal/metrics"
	"github.com/vagkalosynakis/attributes/internal/models"
	"github.com/vagkalosynakis/attributes/internal/utils"
	"golang.org/x/crypto/blake2b"
)

// RateLimitStorage keeps fixed-window counters.
type RateLimitStorage interface {
	Current(ctx context.Context, key string) (models.RateLimitCounter, error)
	Increment(ctx context.Context, key string, window time.Duration) (models.RateLimitCounter, error)
}

// RateLimiter builds per-route fixed-window limits keyed by client address,
// method and path.
type RateLimiter struct {
	storage RateLimitStorage
	log     *logrus.Entry
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewRateLimiter(storage RateLimitStorage, log *logrus.Entry, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{storage: storage, log: log, metrics: m, now: time.Now}
}

// Limit allows amount requests per interval for each client on a route.
func (rl *RateLimiter) Limit(amount int, interval time.Duration) func(http.Handler) http.Handler {
	seconds := int64(interval / time.Second)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := RateLimitKey(utils.ClientIP(r), r.Method, r.URL.Path)

			current, err := rl.storage.Current(r.Context(), key)
			if err != nil {
				rl.fail(w, r, err)
				return
			}

			if current.RequestCount >= amount {
				rl.reject(w, r, amount, seconds, current.ExpiresAt)
				return
			}

			counter, err := rl.storage.Increment(r.Context(), key, interval)
			if err != nil {
				rl.fail(w, r, err)
				return
			}

			remaining := amount - counter.RequestCount
			if remaining < 0 {
				remaining = 0
			}
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(amount))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetUnix(counter.ExpiresAt, rl.now()), 10))

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) reject(w http.ResponseWriter, r *http.Request, amount int, seconds int64, expiresAt time.Time) {
	now := rl.now()

	var retryAfter int64
	resetTime := "unknown"
	if !expiresAt.IsZero() {
		retryAfter = int64(expiresAt.Sub(now).Round(time.Second) / time.Second)
		if retryAfter < 0 {
			retryAfter = 0
		}
		resetTime = expiresAt.Format("2006-01-02 15:04:05")
	}

	if rl.metrics != nil {
		rl.metrics.RateLimited(routePattern(r))
	}
	rl.log.WithFields(logrus.Fields{
		"ip":     utils.ClientIP(r),
		"method": r.Method,
		"path":   r.URL.Path,
	}).Warn("rate limit exceeded")

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(amount))
	h.Set("X-RateLimit-Remaining", "0")
	h.Set("X-RateLimit-Reset", strconv.FormatInt(resetUnix(expiresAt, now), 10))
	h.Set("Retry-After", strconv.FormatInt(retryAfter, 10))

	utils.JSON(w, http.StatusTooManyRequests, map[string]any{
		"success":     false,
		"error":       "Rate limit exceeded",
		"message":     fmt.Sprintf("Too many requests. Limit: %d requests per %d seconds", amount, seconds),
		"retry_after": retryAfter,
		"reset_time":  resetTime,
	})
}

func (rl *RateLimiter) fail(w http.ResponseWriter, r *http.Request, err error) {
	rl.log.WithError(err).WithField("path", r.URL.Path).Error("rate limit storage")
	utils.JSONError(w, http.StatusInternalServerError, "Internal Server Error")
}

func resetUnix(expiresAt, now time.Time) int64 {
	if expiresAt.IsZero() {
		return now.Unix()
	}
	return expiresAt.Unix()
}

// RateLimitKey fingerprints a client and route.
func RateLimitKey(ip, method, path string) string {
	sum := blake2b.Sum256([]byte(ip + ":" + method + ":" + path))
	return "rate_limit:" + hex.EncodeToString(sum[:])
}
