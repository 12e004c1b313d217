/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Metrics:    Prometheus request counter and latency histogram
  5. CORS:       Cross-origin requests from the configured origins

ROUTE GROUPS:
  /api/clients/*   Parties
  /api/deals/*     Opportunities
  /api/tasks/*     Action items
  /healthz         Liveness and database ping
  /metrics         Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - metrics.go: Request metrics
  - cli/serve.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/records-engine/config"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg config.Server) *chi.Mux {
	metrics := NewMetrics()

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.clients.list)
			r.Post("/", h.clients.create)
			r.Get("/{id}", h.clients.get)
			r.Put("/{id}", h.clients.update)
			r.Delete("/{id}", h.clients.delete)
		})

		r.Route("/deals", func(r chi.Router) {
			r.Get("/", h.deals.list)
			r.Post("/", h.deals.create)
			r.Get("/{id}", h.deals.get)
			r.Put("/{id}", h.deals.update)
			r.Delete("/{id}", h.deals.delete)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.tasks.list)
			r.Post("/", h.tasks.create)
			r.Get("/{id}", h.tasks.get)
			r.Put("/{id}", h.tasks.update)
			r.Delete("/{id}", h.tasks.delete)
		})
	})

	return r
}
