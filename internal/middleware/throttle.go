package middleware

import (
	"net/http"

	"github.com/vagkalosynakis/attributes/internal/utils"
	"golang.org/x/time/rate"
)

// Throttle caps the whole server at rps requests per second with the given
// burst. A non-positive rps disables it.
func Throttle(rps float64, burst int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rps <= 0 {
			return next
		}
		limiter := rate.NewLimiter(rate.Limit(rps), burst)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				utils.JSONError(w, http.StatusTooManyRequests, "Too Many Requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
