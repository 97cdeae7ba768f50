package handlers

import (
	"net/http"

	"github.com/fitlo/fitlo/internal/auth"
)

// handleLogin exchanges the admin password for a session cookie
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, err := h.Auth.Login(r.Context(), req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	auth.SetSessionCookie(w, token, h.Auth.TTL())
	respondSuccess(w, "Logged in")
}

// handleLogout clears the session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		if err := h.Auth.Logout(r.Context(), cookie.Value); err != nil {
			respondError(w, err)
			return
		}
	}

	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}
