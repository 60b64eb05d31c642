package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vagkalosynakis/attributes/internal/routes"
	"github.com/vagkalosynakis/attributes/internal/service"
	"github.com/vagkalosynakis/attributes/internal/utils"
)

type UserHandler struct {
	users    *service.UserService
	posts    *service.PostService
	cacheTTL time.Duration
	log      *logrus.Entry
}

func NewUserHandler(users *service.UserService, posts *service.PostService, cacheTTL time.Duration, log *logrus.Entry) *UserHandler {
	return &UserHandler{users: users, posts: posts, cacheTTL: cacheTTL, log: log}
}

func (h *UserHandler) Routes() routes.Controller {
	return routes.Controller{
		Name:   "users",
		Prefix: "api",
		Groups: []string{"api"},
		Routes: []routes.Route{
			{Method: http.MethodGet, Path: "/users", Name: "index", Handler: h.List},
			{Method: http.MethodPost, Path: "/users", Name: "create", Handler: h.Create, RateLimit: routes.PerMinute(10)},
			{Method: http.MethodGet, Path: "/users/search", Name: "search", Handler: h.Search},
			{Method: http.MethodGet, Path: "/users/stats", Name: "stats", Handler: h.Stats, Cache: &routes.Cache{TTL: h.cacheTTL}},
			{Method: http.MethodGet, Path: "/users/{id:[0-9]+}", Name: "show", Handler: h.Show},
			{Method: http.MethodPut, Path: "/users/{id:[0-9]+}", Name: "update", Handler: h.Update},
			{Method: http.MethodDelete, Path: "/users/{id:[0-9]+}", Name: "delete", Handler: h.Delete},
			{Method: http.MethodGet, Path: "/users/{id:[0-9]+}/posts", Name: "posts", Handler: h.Posts},
		},
	}
}

// ---------------------- LIST ----------------------

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetAll(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    users,
		"count":   len(users),
	})
}

// ---------------------- GET ONE ----------------------

func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, h.log, service.ErrUserNotFound)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{"success": true, "data": user})
}

// ---------------------- CREATE ----------------------

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.users.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    user,
		"message": "User created successfully",
	})
}

// ---------------------- UPDATE ----------------------

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, h.log, service.ErrUserNotFound)
		return
	}

	var req service.UpdateUserRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.users.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    user,
		"message": "User updated successfully",
	})
}

// ---------------------- DELETE ----------------------

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, h.log, service.ErrUserNotFound)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User deleted successfully",
	})
}

// ---------------------- QUERIES ----------------------

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.SearchByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    users,
		"count":   len(users),
	})
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListWithPostCount(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    users,
		"count":   len(users),
	})
}

func (h *UserHandler) Posts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, h.log, service.ErrUserNotFound)
		return
	}

	posts, err := h.posts.ListByUser(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	total, err := h.posts.CountByUser(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    posts,
		"count":   total,
	})
}
