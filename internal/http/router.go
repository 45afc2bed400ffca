package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/preston-bernstein/prop-grader/internal/http/handlers"
	"github.com/preston-bernstein/prop-grader/internal/http/middleware"
	"github.com/preston-bernstein/prop-grader/internal/metrics"
)

// RouterConfig carries the cross-cutting settings for the router.
type RouterConfig struct {
	AdminToken     string
	AllowedOrigins []string
	Logger         *slog.Logger
	Recorder       *metrics.Recorder
}

// NewRouter registers every route. Everything except health and readiness
// requires the admin bearer token.
func NewRouter(h *handlers.Handler, cfg RouterConfig) nethttp.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Logging(cfg.Logger, cfg.Recorder))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{nethttp.MethodGet, nethttp.MethodPost, nethttp.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.AdminToken, cfg.Logger))

		r.Post("/admin/grade", h.Grade)
		r.Post("/admin/grade/manual", h.GradeManual)
		r.Post("/admin/packs/{id}/check", h.CheckPack)

		r.Post("/h2h", h.CreateMatchup)
		r.Post("/h2h/finalize", h.FinalizeMatchup)
		r.Post("/h2h/{token}/accept", h.AcceptMatchup)
		r.Get("/h2h/{token}/preview", h.PreviewMatchup)

		r.Post("/props/{id}/predictions", h.PlacePrediction)
	})
	return r
}
