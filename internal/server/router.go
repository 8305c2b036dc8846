package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/professor/internal/config"
	"github.com/sevigo/professor/internal/core"
	"github.com/sevigo/professor/internal/server/handler"
	"github.com/sevigo/professor/internal/storage"
)

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(cfg *config.Config, dispatcher core.JobDispatcher, store storage.ReviewStore, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		webhookHandler := handler.NewWebhookHandler(cfg.GitHubWebhookSecret, dispatcher, logger)
		r.Post("/webhook/github", webhookHandler.Handle)

		reviewsHandler := handler.NewReviewsHandler(store, logger)
		r.Get("/reviews/{owner}/{repo}/{number}", reviewsHandler.GetLatest)
	})

	return r
}
