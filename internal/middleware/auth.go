package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vagkalosynakis/attributes/internal/utils"
)

// Auth requires a bearer token signed with secret and puts its user id in
// the request context. With an empty secret every request passes.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			token := strings.TrimSpace(parts[1])
			if token == "" {
				utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := utils.VerifyToken(token, secret)
			if err != nil {
				utils.JSONError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			// push user ID into context
			ctx := context.WithValue(r.Context(), utils.CtxUserIDKey, claims.SubjectInt())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
