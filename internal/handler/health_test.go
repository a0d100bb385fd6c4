package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ymatsu/zange-board/internal/handler"
)

func TestHealthHandler(t *testing.T) {
	h := handler.NewHealthHandler()

	t.Run("health", func(t *testing.T) {
		rr := doJSON(h.HandleHealth, http.MethodGet, "/api/health", "", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, true, decodeBody(t, rr)["ok"])
	})

	t.Run("ping reports the version", func(t *testing.T) {
		rr := doJSON(h.HandlePing, http.MethodGet, "/api/ping", "", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, handler.Version, body["version"])
	})
}
