package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymatsu/zange-board/internal/model"
)

func TestPostHandler_HandleCreate(t *testing.T) {
	t.Run("anonymous author", func(t *testing.T) {
		env := newTestEnv(t)

		rr := doJSON(env.posts.HandleCreate, http.MethodPost, "/api/posts",
			`{"text":"今日は集中できなかった","tag":"#懺悔"}`, nil)

		assert.Equal(t, http.StatusCreated, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, model.AnonymousAuthor, body["author"])
		assert.Equal(t, "今日は集中できなかった", body["text"])
		assert.Equal(t, "public", body["scope"]) // default
	})

	t.Run("author comes from the session", func(t *testing.T) {
		env := newTestEnv(t)
		cookies := signupUser(t, env, "poster@example.com", "secret123", "poster")

		rr := doJSON(env.posts.HandleCreate, http.MethodPost, "/api/posts",
			`{"text":"hello"}`, cookies)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "poster", decodeBody(t, rr)["author"])
	})

	t.Run("author in the body is ignored", func(t *testing.T) {
		env := newTestEnv(t)

		rr := doJSON(env.posts.HandleCreate, http.MethodPost, "/api/posts",
			`{"text":"spoofed","author":"admin"}`, nil)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, model.AnonymousAuthor, decodeBody(t, rr)["author"])
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		env := newTestEnv(t)

		rr := doJSON(env.posts.HandleCreate, http.MethodPost, "/api/posts",
			`{"text":"   "}`, nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "text is required", decodeBody(t, rr)["error"])
	})
}

func TestPostHandler_HandleList(t *testing.T) {
	env := newTestEnv(t)

	for _, text := range []string{"first", "second", "third"} {
		rr := doJSON(env.posts.HandleCreate, http.MethodPost, "/api/posts",
			`{"text":"`+text+`"}`, nil)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := doJSON(env.posts.HandleList, http.MethodGet, "/api/posts", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)

	var posts []model.Post
	require.NoError(t, decodeInto(rr, &posts))
	require.Len(t, posts, 3)
	assert.Equal(t, "third", posts[0].Text) // newest first
	assert.Equal(t, "first", posts[2].Text)
}
