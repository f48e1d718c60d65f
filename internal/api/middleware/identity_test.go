package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	t.Run("puts the header value on context", func(t *testing.T) {
		var captured string
		handler := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = GetUserID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User-ID", "user-9")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "user-9", captured)
	})

	t.Run("anonymous requests pass through", func(t *testing.T) {
		var status int
		handler := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, GetUserID(r.Context()))
			status = http.StatusOK
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, http.StatusOK, status)
	})
}

func TestGetUserID_EmptyContext(t *testing.T) {
	assert.Empty(t, GetUserID(context.Background()))
}
