package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vagkalosynakis/attributes/internal/utils"
)

// Logging writes one entry per request once the response is done. A handler
// that panics before writing is logged as a 500; the panic itself keeps
// unwinding to Recoverer.
func Logging(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapWriter(w)
			completed := false

			defer func() {
				status := wrapped.statusCode
				if !completed && !wrapped.written {
					status = http.StatusInternalServerError
				}

				entry := log.WithFields(logrus.Fields{
					"method":      r.Method,
					"uri":         r.URL.RequestURI(),
					"status":      status,
					"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
					"ip":          utils.ClientIP(r),
					"user_agent":  r.UserAgent(),
				})
				if id := GetRequestID(r.Context()); id != "" {
					entry = entry.WithField("request_id", id)
				}
				if !completed {
					entry = entry.WithField("panicked", true)
				}

				switch {
				case status >= 500:
					entry.Error("request")
				case status >= 400:
					entry.Warn("request")
				default:
					entry.Info("request")
				}
			}()

			next.ServeHTTP(wrapped, r)
			completed = true
		})
	}
}
