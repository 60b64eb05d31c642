package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vagkalosynakis/attributes/internal/routes"
	"github.com/vagkalosynakis/attributes/internal/service"
	"github.com/vagkalosynakis/attributes/internal/utils"
)

type PostHandler struct {
	posts    *service.PostService
	cacheTTL time.Duration
	log      *logrus.Entry
}

func NewPostHandler(posts *service.PostService, cacheTTL time.Duration, log *logrus.Entry) *PostHandler {
	return &PostHandler{posts: posts, cacheTTL: cacheTTL, log: log}
}

func (h *PostHandler) Routes() routes.Controller {
	return routes.Controller{
		Name:   "posts",
		Prefix: "api",
		Groups: []string{"api"},
		Routes: []routes.Route{
			{Method: http.MethodGet, Path: "/posts", Name: "index", Handler: h.GetPosts},
			{Method: http.MethodPost, Path: "/posts", Name: "create", Handler: h.CreatePost, Middleware: []string{"auth"}, RateLimit: routes.PerMinute(10)},
			{Method: http.MethodGet, Path: "/posts/search", Name: "search", Handler: h.SearchPosts},
			{Method: http.MethodGet, Path: "/posts/recent", Name: "recent", Handler: h.RecentPosts, Cache: &routes.Cache{TTL: h.cacheTTL}},
			{Method: http.MethodGet, Path: "/posts/{id:[0-9]+}", Name: "show", Handler: h.GetPostByID},
			{Method: http.MethodPut, Path: "/posts/{id:[0-9]+}", Name: "update", Handler: h.UpdatePost, Middleware: []string{"auth"}},
			{Method: http.MethodDelete, Path: "/posts/{id:[0-9]+}", Name: "delete", Handler: h.DeletePost, Middleware: []string{"auth"}},
		},
	}
}

// ---------------------- CREATE ----------------------

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req service.CreatePostRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	// an authenticated caller always posts as the token's user
	if userID, ok := utils.UserIDFromContext(r.Context()); ok {
		req.UserID = userID
	}

	post, err := h.posts.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    post,
		"message": "Post created successfully",
	})
}

// ---------------------- GET ONE ----------------------

func (h *PostHandler) GetPostByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, h.log, service.ErrPostNotFound)
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{"success": true, "data": post})
}

// ---------------------- LIST ----------------------

func (h *PostHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.GetAll(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    posts,
		"count":   len(posts),
	})
}

func (h *PostHandler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.SearchByTitle(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    posts,
		"count":   len(posts),
	})
}

// RecentPosts ignores a malformed limit and falls back to the default.
func (h *PostHandler) RecentPosts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, err := h.posts.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    posts,
		"count":   len(posts),
	})
}

// ---------------------- UPDATE ----------------------

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, h.log, service.ErrPostNotFound)
		return
	}

	var req service.UpdatePostRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	post, err := h.posts.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    post,
		"message": "Post updated successfully",
	})
}

// ---------------------- DELETE ----------------------

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, h.log, service.ErrPostNotFound)
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Post deleted successfully",
	})
}
