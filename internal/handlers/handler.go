package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/vagkalosynakis/attributes/internal/routes"
	"github.com/vagkalosynakis/attributes/internal/service"
	"github.com/vagkalosynakis/attributes/internal/utils"
)

// Options tune the route tables.
type Options struct {
	CacheTTL     time.Duration
	AccessSecret string
	AccessTTL    time.Duration
}

type Handler struct {
	Home  *HomeHandler
	Users *UserHandler
	Posts *PostHandler
	Auth  *AuthHandler
}

func NewHandler(users *service.UserService, posts *service.PostService, opts Options, log *logrus.Entry) *Handler {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	return &Handler{
		Home:  NewHomeHandler(),
		Users: NewUserHandler(users, posts, opts.CacheTTL, log.WithField("handler", "users")),
		Posts: NewPostHandler(posts, opts.CacheTTL, log.WithField("handler", "posts")),
		Auth:  NewAuthHandler(users, opts.AccessSecret, opts.AccessTTL, log.WithField("handler", "auth")),
	}
}

// Controllers returns every route table in mount order.
func (h *Handler) Controllers() []routes.Controller {
	return []routes.Controller{
		h.Home.Routes(),
		h.Home.TestRoutes(),
		h.Users.Routes(),
		h.Posts.Routes(),
		h.Auth.Routes(),
	}
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, log *logrus.Entry, err error) {
	var (
		validation *service.ValidationError
		notFound   *service.NotFoundError
		invalid    *service.InvalidArgumentError
	)

	switch {
	case errors.As(err, &validation):
		utils.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success":           false,
			"error":             "Validation failed",
			"validation_errors": validation.Fields,
		})
	case errors.As(err, &notFound):
		utils.JSONError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &invalid):
		utils.JSONError(w, http.StatusBadRequest, invalid.Error())
	default:
		log.WithError(err).Error("request failed")
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// pathID reads a numeric {name} parameter. Values that do not fit an
// int64 cannot name a row and are reported as missing.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
