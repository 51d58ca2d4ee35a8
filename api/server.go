/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. requestLog: Structured request logging via zerolog
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/login                  Credential check
  /api/employees/*            Directory, balances, clocking, requests
  /api/leaves/*               Approval surface
  /api/admin/*                Overtime grants
  /api/reports/*              Monthly views

SECURITY NOTE:
  No token auth: the system models the original's session-per-browser
  design where the client holds the identity returned by /api/login.
  Deploy behind the company VPN.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLog(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{username}/summary", h.GetSummary)
			r.Get("/{username}/records", h.GetRecords)
			r.Post("/{username}/clock", h.Clock)
			r.Post("/{username}/leaves", h.SubmitLeave)
		})

		r.Route("/leaves", func(r chi.Router) {
			r.Get("/pending", h.ListPendingLeaves)
			r.Post("/{id}/approve", h.ApproveLeave)
			r.Post("/{id}/reject", h.RejectLeave)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/overtime", h.GrantOvertime)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/attendance/{month}", h.MonthlyAttendance)
			r.Get("/leave-calendar/{month}", h.MonthlyLeaveCalendar)
		})
	})

	return r
}

// requestLog logs one line per request with method, path, status, and
// duration.
func requestLog(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
