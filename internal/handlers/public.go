package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]string{"status": "ok"})
}

// handlePublicLeaderboard serves the standings of one scope, visible workouts only
func (h *Handlers) handlePublicLeaderboard(w http.ResponseWriter, r *http.Request) {
	st, err := h.Leaderboard.PublicLeaderboard(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, err)
		return
	}

	resp, err := newLeaderboardResponse(st, r.URL.Query().Get("scope"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, resp)
}

func (h *Handlers) handlePublicHeats(w http.ResponseWriter, r *http.Request) {
	list, err := h.Heat.ListHeatsBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, list)
}

// handleWebSocket subscribes a client to one competition's live updates
func (h *Handlers) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("competition")
	if slug == "" {
		respondError(w, BadRequest("Missing competition parameter"))
		return
	}
	if _, err := h.Competition.GetCompetitionBySlug(r.Context(), slug); err != nil {
		respondError(w, err)
		return
	}
	h.Hub.ServeWs(w, r, slug)
}
