package middleware

import (
	"net/http"

	"github.com/mindcove/mindex/internal/api"
)

// DefaultMaxBodyBytes is the request body cap the router applies to every
// route. Search payloads are a query plus a few filter lists, so 1 MiB
// leaves generous headroom.
const DefaultMaxBodyBytes int64 = 1 << 20

// MaxBodyBytes rejects requests whose declared Content-Length exceeds limit
// with a 413, and wraps the body so chunked uploads cannot exceed it either.
// A non-positive limit disables the check.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
