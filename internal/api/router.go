package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/telemetree/sensornet-core/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
//
// Authorization is declared per route group: reads need any authenticated
// caller, inventory writes need operator or admin, user management and
// the audit trail are admin only.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	anyUser := s.requireRole()
	writers := s.requireRole(auth.RoleAdmin, auth.RoleOperator)
	adminOnly := s.requireRole(auth.RoleAdmin)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints
		r.Post("/auth/login", s.handleLogin)
		r.With(anyUser).Get("/auth/me", s.handleMe)
		r.With(anyUser).Post("/auth/ws-ticket", s.handleWSTicket)

		// User management (admin only)
		r.Route("/users", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetUser)
				r.Patch("/", s.handleUpdateUser)
				r.Delete("/", s.handleDeleteUser)
				r.Put("/password", s.handleSetUserPassword)
			})
		})

		// Gateway endpoints
		r.Route("/gateways", func(r chi.Router) {
			r.With(anyUser).Get("/", s.handleListGateways)
			r.With(writers).Post("/", s.handleCreateGateway)

			r.Route("/{id}", func(r chi.Router) {
				r.With(anyUser).Get("/", s.handleGetGateway)
				r.With(anyUser).Get("/networks", s.handleListGatewayNetworks)
				r.With(writers).Patch("/", s.handleUpdateGateway)
				r.With(writers).Delete("/", s.handleDeleteGateway)
			})
		})

		// Network endpoints
		r.Route("/networks", func(r chi.Router) {
			r.With(anyUser).Get("/", s.handleListNetworks)
			r.With(writers).Post("/", s.handleCreateNetwork)

			r.Route("/{id}", func(r chi.Router) {
				r.With(anyUser).Get("/", s.handleGetNetwork)
				r.With(anyUser).Get("/sensors", s.handleListNetworkSensors)
				r.With(writers).Patch("/", s.handleUpdateNetwork)
				r.With(writers).Delete("/", s.handleDeleteNetwork)
			})
		})

		// Sensor endpoints
		r.Route("/sensors", func(r chi.Router) {
			r.With(anyUser).Get("/", s.handleListSensors)
			r.With(writers).Post("/", s.handleCreateSensor)

			r.Route("/{id}", func(r chi.Router) {
				r.With(anyUser).Get("/", s.handleGetSensor)
				r.With(writers).Patch("/", s.handleUpdateSensor)
				r.With(writers).Delete("/", s.handleDeleteSensor)

				r.Route("/measurements", func(r chi.Router) {
					r.With(anyUser).Get("/", s.handleMeasurementHistory)
					r.With(anyUser).Get("/latest", s.handleLatestMeasurement)
					r.With(writers).Post("/", s.handleRecordMeasurement)
				})
			})
		})

		// Audit trail (admin only)
		r.With(adminOnly).Get("/audit", s.handleListAudit)

		// WebSocket (auth via ticket, validated in handler)
		r.Get("/ws", s.handleWebSocket)
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
