package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vagkalosynakis/attributes/internal/routes"
	"github.com/vagkalosynakis/attributes/internal/service"
	"github.com/vagkalosynakis/attributes/internal/utils"
)

type AuthHandler struct {
	users  *service.UserService
	secret string
	ttl    time.Duration
	log    *logrus.Entry
}

func NewAuthHandler(users *service.UserService, secret string, ttl time.Duration, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{users: users, secret: secret, ttl: ttl, log: log}
}

func (h *AuthHandler) Routes() routes.Controller {
	return routes.Controller{
		Name:   "auth",
		Prefix: "api/auth",
		Groups: []string{"api"},
		Routes: []routes.Route{
			{Method: http.MethodPost, Path: "/token", Name: "token", Handler: h.Token, RateLimit: routes.PerMinute(5)},
		},
	}
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

// Token issues an access token for the user owning the given email.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		utils.JSONError(w, http.StatusServiceUnavailable, "Authentication is not configured")
		return
	}

	var req service.TokenRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	token, exp, err := utils.GenerateToken(user.ID, user.Email, h.secret, h.ttl)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": tokenResp{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresAt:   exp,
		},
	})
}
