package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxBodyBytes(t *testing.T) {
	t.Run("passes bodies under the limit", func(t *testing.T) {
		var read []byte
		handler := MaxBodyBytes(32)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			read, _ = io.ReadAll(r.Body)
		}))

		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("small payload"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "small payload", string(read))
	})

	t.Run("rejects a declared oversized body with 413", func(t *testing.T) {
		handler := MaxBodyBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("definitely too long"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("caps reads when content length is unknown", func(t *testing.T) {
		var readErr error
		handler := MaxBodyBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
		}))

		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("definitely too long"))
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Error(t, readErr)
		var maxErr *http.MaxBytesError
		assert.ErrorAs(t, readErr, &maxErr)
	})

	t.Run("non-positive limit disables the check", func(t *testing.T) {
		var read []byte
		handler := MaxBodyBytes(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			read, _ = io.ReadAll(r.Body)
		}))

		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("any size goes"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "any size goes", string(read))
	})
}
