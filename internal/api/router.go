package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes. Reads and manual status changes need any valid
		// token; management writes, user administration, and the evaluation
		// trigger are admin only.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			// Device endpoints
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.With(s.adminMiddleware).Post("/", s.handleCreateDevice)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.With(s.adminMiddleware).Patch("/", s.handleUpdateDevice)
					r.With(s.adminMiddleware).Delete("/", s.handleDeleteDevice)
					r.Patch("/status", s.handleSetDeviceStatus)
					r.Get("/changes", s.handleListDeviceChanges)
				})
			})

			// Device type endpoints
			r.Route("/device-types", func(r chi.Router) {
				r.Get("/", s.handleListDeviceTypes)
				r.With(s.adminMiddleware).Post("/", s.handleCreateDeviceType)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDeviceType)
					r.With(s.adminMiddleware).Patch("/", s.handleUpdateDeviceType)
					r.With(s.adminMiddleware).Delete("/", s.handleDeleteDeviceType)
				})
			})

			// Scenario rule endpoints
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", s.handleListScenarios)
				r.With(s.adminMiddleware).Post("/", s.handleCreateScenario)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetScenario)
					r.With(s.adminMiddleware).Patch("/", s.handleUpdateScenario)
					r.With(s.adminMiddleware).Delete("/", s.handleDeleteScenario)
				})
			})

			// User management
			r.Route("/users", func(r chi.Router) {
				r.Use(s.adminMiddleware)

				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetUser)
					r.Patch("/", s.handleUpdateUser)
					r.Put("/password", s.handleSetUserPassword)
					r.Delete("/", s.handleDeleteUser)
				})
			})

			// Audit trail
			r.Get("/status-changes", s.handleListStatusChanges)

			// Weather lookup
			r.Get("/weather", s.handleGetWeather)

			// Evaluation trigger
			r.With(s.adminMiddleware).Post("/evaluation/run", s.handleRunEvaluation)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
