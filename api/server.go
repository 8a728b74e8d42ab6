/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:      Unique ID per request for tracing
  2. RequestLogger:  One zerolog line per request, tagged with the ID
  3. Recoverer:      Panic recovery (500 instead of crash)
  4. CORS:           Cross-origin requests for the browser UI

ROUTE GROUPS:
  /api/attainment, /api/retention, /api/quota-mix   Calculators
  /api/session                                      Saved inputs
  /api/rosters/*                                    Batch upload and export
  /healthz                                          Liveness

SECURITY NOTE:
  No authentication middleware. This is a single-user tool.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/compcalc/serve.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/comp-calculator/logging"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Calculator routes
		r.Post("/attainment", h.Attainment)
		r.Post("/retention", h.Retention)
		r.Post("/quota-mix", h.QuotaMix)

		// Session routes
		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Put("/", h.PutSession)
			r.Delete("/", h.DeleteSession)
		})

		// Roster routes
		r.Route("/rosters", func(r chi.Router) {
			r.Get("/template", h.RosterTemplate)
			r.Post("/", h.UploadRoster)
			r.Get("/{id}", h.GetRoster)
			r.Delete("/{id}", h.DeleteRoster)
			r.Post("/{id}/calculate", h.CalculateRoster)
			r.Get("/{id}/export", h.ExportRoster)
			r.Get("/{id}/summary", h.RosterSummary)
		})
	})

	return r
}
