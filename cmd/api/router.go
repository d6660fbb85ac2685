package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
)

type routes struct {
	Forms          *handlers.FormHandler
	Leads          *handlers.LeadHandler
	Validation     *handlers.ValidationHandler
	Health         *handlers.HealthHandler
	Limiter        *handlers.RateLimiter
	AllowedOrigins []string
	// TrustProxy liga o RealIP: só atrás de um proxy que sobrescreve X-Forwarded-For
	TrustProxy bool
}

func NewRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if rt.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", rt.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/forms", func(r chi.Router) {
		if rt.Limiter != nil {
			r.With(rt.Limiter.Middleware).Post("/", rt.Forms.Open)
		} else {
			r.Post("/", rt.Forms.Open)
		}
		rt.Forms.Routes(r)
	})

	r.Post("/leads", rt.Leads.CaptureLead)
	r.Post("/leads/validate", rt.Validation.Handle)

	return r
}
