package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vagkalosynakis/attributes/internal/config"
)

func TestListPosts(t *testing.T) {
	a := newApp(t)
	a.seed()

	res := a.do(http.MethodGet, "/api/posts", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.EqualValues(t, 10, res.get("count").Int())
	assert.NotEmpty(t, res.get("data.0.user_name").String())
	assert.Contains(t, res.get("data.0.user_email").String(), "@example.com")
}

func TestCreatePost(t *testing.T) {
	a := newApp(t)
	a.seed()

	res := a.do(http.MethodPost, "/api/posts", `{"title":"Fresh post","content":"Some brand new content","user_id":2}`)
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, "Post created successfully", res.get("message").String())
	assert.EqualValues(t, 2, res.get("data.user_id").Int())
	id := res.get("data.id").Int()

	res = a.do(http.MethodGet, "/api/posts/"+res.get("data.id").String(), "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, id, res.get("data.id").Int())
	assert.Equal(t, "Fresh post", res.get("data.title").String())

	res = a.do(http.MethodPost, "/api/posts", `{"title":"Orphan post","content":"Nobody wrote this one","user_id":999}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "User not found", res.get("error").String())

	res = a.do(http.MethodPost, "/api/posts", `{"title":"Hi","content":"short"}`)
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Equal(t, "This value is too short. It should have 3 characters or more.", res.get("validation_errors.title").String())
	assert.Equal(t, "This value is too short. It should have 10 characters or more.", res.get("validation_errors.content").String())
	assert.Equal(t, "This value should not be blank.", res.get("validation_errors.user_id").String())
}

func TestShowPostNotFound(t *testing.T) {
	a := newApp(t)

	res := a.do(http.MethodGet, "/api/posts/42", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.JSONEq(t, `{"success":false,"error":"Post not found"}`, res.Body)
}

func TestUpdateAndDeletePost(t *testing.T) {
	a := newApp(t)
	a.seed()

	res := a.do(http.MethodPut, "/api/posts/1", `{"title":"Renamed","user_id":3}`)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Post updated successfully", res.get("message").String())
	assert.Equal(t, "Renamed", res.get("data.title").String())
	// the author does not change
	assert.EqualValues(t, 1, res.get("data.user_id").Int())

	res = a.do(http.MethodPut, "/api/posts/1", `{"user_id":3}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "No valid data to update", res.get("error").String())

	res = a.do(http.MethodPut, "/api/posts/999", `{"title":"Renamed"}`)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = a.do(http.MethodDelete, "/api/posts/1", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"success":true,"message":"Post deleted successfully"}`, res.Body)

	res = a.do(http.MethodDelete, "/api/posts/1", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestSearchPosts(t *testing.T) {
	a := newApp(t)
	a.seed()

	res := a.do(http.MethodGet, "/api/posts/search?title=update", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.EqualValues(t, 1, res.get("count").Int())
	assert.Equal(t, "Weekly Update", res.get("data.0.title").String())
	assert.Equal(t, "Alice Brown", res.get("data.0.user_name").String())

	res = a.do(http.MethodGet, "/api/posts/search?title=", "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Title parameter is required", res.get("error").String())
}

func TestRecentPosts(t *testing.T) {
	a := newApp(t)
	a.seed()

	res := a.do(http.MethodGet, "/api/posts/recent?limit=3", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.EqualValues(t, 3, res.get("count").Int())
	assert.Equal(t, "MISS", res.Header.Get("X-Cache-Status"))

	res = a.do(http.MethodGet, "/api/posts/recent?limit=oops", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.EqualValues(t, 10, res.get("count").Int())

	res = a.do(http.MethodGet, "/api/posts/recent?limit=3", "")
	assert.Equal(t, "HIT", res.Header.Get("X-Cache-Status"))
}

func withAuth(c *config.Config) { c.Auth.Secret = "test-secret" }

func TestPostWritesNeedToken(t *testing.T) {
	a := newApp(t, withAuth)
	a.seed()

	res := a.do(http.MethodPost, "/api/posts", `{"title":"Locked out","content":"This should not be saved"}`)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = a.do(http.MethodDelete, "/api/posts/1", "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	// reads stay open
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/posts/1", "").Code)

	res = a.do(http.MethodPost, "/api/auth/token", `{"email":"jane@example.com"}`)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Bearer", res.get("data.token_type").String())
	token := res.get("data.access_token").String()
	require.NotEmpty(t, token)

	// the author defaults to the token's user
	res = a.do(http.MethodPost, "/api/posts", `{"title":"Signed post","content":"Written with a token"}`, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusCreated, res.Code)
	assert.EqualValues(t, 2, res.get("data.user_id").Int())

	// a user_id in the body cannot override the token
	res = a.do(http.MethodPost, "/api/posts", `{"title":"Impostor post","content":"Claims to be someone else","user_id":1}`, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusCreated, res.Code)
	assert.EqualValues(t, 2, res.get("data.user_id").Int())

	res = a.do(http.MethodDelete, "/api/posts/1", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestTokenEndpoint(t *testing.T) {
	a := newApp(t)
	res := a.do(http.MethodPost, "/api/auth/token", `{"email":"jane@example.com"}`)
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)

	a = newApp(t, withAuth)
	a.seed()

	res = a.do(http.MethodPost, "/api/auth/token", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "User not found", res.get("error").String())

	res = a.do(http.MethodPost, "/api/auth/token", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
}
