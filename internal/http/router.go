package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jcarver/ledgerlink/internal/http/enrollment"
	"github.com/jcarver/ledgerlink/internal/http/insights"
	"github.com/jcarver/ledgerlink/internal/http/webhook"
)

func New(
	enrollmentsV1 *enrollment.Handler,
	insightsV1 *insights.Handler,
	webhooksV1 *webhook.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/enrollments", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			enrollmentsV1.Routes(r)
		})

		r.Route("/insights", func(r chi.Router) {
			insightsV1.Routes(r)
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			webhooksV1.Routes(r)
		})
	})

	return router
}
