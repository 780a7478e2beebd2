/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the calculator page

ROUTE GROUPS:
  /health                    Liveness
  /api/sessions/*            Live calculators and their bonuses
  /api/scenarios/*           Saved scenarios

SECURITY NOTE:
  No authentication middleware. Sessions are only protected by their
  unguessable ids.

SEE ALSO:
  - handlers.go: Session handlers
  - scenarios.go: Saved scenario handlers
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
// allowedOrigins defaults to any origin when empty.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Session routes
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Delete("/", h.CloseSession)
				r.Put("/params", h.UpdateParams)
				r.Post("/bonuses", h.AddBonus)
				r.Patch("/bonuses/{bonusID}", h.UpdateBonus)
				r.Delete("/bonuses/{bonusID}", h.RemoveBonus)
				r.Post("/undo", h.Undo)
				r.Post("/reset", h.Reset)
				r.Get("/view", h.GetView)
				r.Get("/schedule", h.GetSchedule)
				r.Get("/report", h.GetReport)
				r.Post("/scenarios", h.SaveScenario)
				r.Post("/scenarios/{sid}/load", h.LoadScenario)
			})
		})

		// Saved scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Delete("/{sid}", h.DeleteScenario)
		})
	})

	return r
}
