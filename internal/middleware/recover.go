package middleware

import (
	"fmt"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vagkalosynakis/attributes/internal/utils"
)

// Recoverer turns a panicking handler into a 500 carrying the panic value
// and where it was raised.
func Recoverer(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				file, line := panicLocation()
				log.WithFields(logrus.Fields{
					"panic": fmt.Sprint(rec),
					"file":  file,
					"line":  line,
					"path":  r.URL.Path,
				}).Error(string(debug.Stack()))

				utils.JSON(w, http.StatusInternalServerError, map[string]any{
					"success": false,
					"error":   "Internal Server Error",
					"message": fmt.Sprint(rec),
					"file":    file,
					"line":    line,
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// panicLocation finds the first non-runtime frame above the deferred
// recover, which is where panic was called.
func panicLocation() (string, int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, "runtime.") {
			return f.File, f.Line
		}
		if !more {
			return "unknown", 0
		}
	}
}
