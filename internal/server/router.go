package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindcove/mindex/internal/api"
	"github.com/mindcove/mindex/internal/api/handlers"
	"github.com/mindcove/mindex/internal/api/middleware"
)

type RouterConfig struct {
	SearchHandler *handlers.SearchHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(middleware.DefaultMaxBodyBytes))
	r.Use(middleware.Identity)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/search", cfg.SearchHandler.Search)
	r.Post("/search/feedback", cfg.SearchHandler.Feedback)
	r.Get("/search/history", cfg.SearchHandler.History)

	return r
}
