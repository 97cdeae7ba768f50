package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, ErrNotFound)
	})

	r.Get("/healthz", h.handleHealth)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// Public (rate limited per client IP)
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)

		r.Get("/ws", h.handleWebSocket)
		r.Get("/api/competitions/{slug}/leaderboard", h.handlePublicLeaderboard)
		r.Get("/api/competitions/{slug}/heats", h.handlePublicHeats)

		// Auth routes
		r.Post("/api/admin/login", h.handleLogin)
		r.Post("/api/admin/logout", h.handleLogout)
	})

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		// Competitions
		r.Get("/api/admin/competitions", h.handleGetCompetitions)
		r.Post("/api/admin/competitions", h.handleCreateCompetition)
		r.Get("/api/admin/competitions/{id}", h.handleGetCompetition)
		r.Put("/api/admin/competitions/{id}/heat-limit-policy", h.handleSetHeatLimitPolicy)

		// Ticket types
		r.Get("/api/admin/competitions/{id}/ticket-types", h.handleGetTicketTypes)
		r.Post("/api/admin/competitions/{id}/ticket-types", h.handleCreateTicketType)

		// Workouts
		r.Get("/api/admin/competitions/{id}/workouts", h.handleGetWorkouts)
		r.Post("/api/admin/competitions/{id}/workouts", h.handleCreateWorkout)
		r.Put("/api/admin/workouts/{id}/visibility", h.handleSetWorkoutVisibility)

		// Entries
		r.Get("/api/admin/competitions/{id}/entries", h.handleGetEntries)
		r.Post("/api/admin/competitions/{id}/entries", h.handleCreateEntry)
		r.Post("/api/admin/competitions/{id}/seed", h.handleSeedEntries)
		r.Get("/api/admin/entries/{id}", h.handleGetEntry)
		r.Delete("/api/admin/entries/{id}", h.handleDeleteEntry)

		// Scores
		r.Put("/api/admin/entries/{id}/scores/{workoutID}", h.handleSubmitScore)
		r.Delete("/api/admin/entries/{id}/scores/{workoutID}", h.handleClearScore)

		// Heats
		r.Get("/api/admin/competitions/{id}/heats", h.handleGetHeats)
		r.Post("/api/admin/competitions/{id}/heats", h.handleCreateHeat)
		r.Post("/api/admin/heats/{id}/assignments", h.handleAssignEntry)
		r.Delete("/api/admin/heats/{id}/assignments/{entryID}", h.handleRemoveAssignment)

		// Leaderboard
		r.Get("/api/admin/competitions/{id}/leaderboard", h.handleAdminLeaderboard)
		r.Get("/api/admin/competitions/{id}/export", h.handleExportLeaderboard)
		r.Get("/api/admin/competitions/{id}/qr", h.handleGetQRImage)
	})

	return r
}
