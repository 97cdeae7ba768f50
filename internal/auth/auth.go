package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/fitlo/fitlo/internal/errors"
	"github.com/fitlo/fitlo/internal/logger"
)

const (
	CookieName    = "fitlo_session"
	SessionExpiry = 24 * time.Hour
)

// ErrInvalidPassword is returned by Login for a wrong password
var ErrInvalidPassword = errors.Unauthorized("invalid password")

// Words for generated admin passwords
var passwordWords = []string{
	"burpee", "snatch", "thruster", "kettlebell", "rower",
	"deadlift", "squat", "pullup", "wallball", "boxjump",
	"clean", "jerk", "chalk", "barbell", "plate",
	"rig", "amrap", "emom", "tabata",
}

// Auth handles admin authentication
type Auth struct {
	password string
	store    SessionStore
	ttl      time.Duration
	log      logger.Logger
}

// New creates an Auth with in-memory sessions
func New(password string) *Auth {
	return NewWithStore(password, NewMemoryStore(), SessionExpiry, logger.NewDiscard())
}

// NewWithStore creates an Auth backed by the given session store
func NewWithStore(password string, store SessionStore, ttl time.Duration, log logger.Logger) *Auth {
	if ttl <= 0 {
		ttl = SessionExpiry
	}
	return &Auth{password: password, store: store, ttl: ttl, log: log}
}

// TTL returns how long new sessions last
func (a *Auth) TTL() time.Duration {
	return a.ttl
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		words[i] = passwordWords[randomInt(len(passwordWords))]
	}
	return strings.Join(words, "-")
}

// Login validates the password and returns a new session token
func (a *Auth) Login(ctx context.Context, password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return "", ErrInvalidPassword
	}

	token := generateToken()
	if err := a.store.Create(ctx, token, a.ttl); err != nil {
		return "", errors.Internal(err)
	}
	return token, nil
}

// Logout invalidates a session token
func (a *Auth) Logout(ctx context.Context, token string) error {
	return a.store.Delete(ctx, token)
}

// ValidateSession checks if a session token is valid.
// Store failures count as invalid and are logged.
func (a *Auth) ValidateSession(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	ok, err := a.store.Valid(ctx, token)
	if err != nil {
		a.log.Error("Session lookup failed", "error", err)
		return false
	}
	return ok
}

// SessionFromRequest returns the session token carried by a request, if valid
func (a *Auth) SessionFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	if !a.ValidateSession(r.Context(), cookie.Value) {
		return "", false
	}
	return cookie.Value, true
}

// RequireAuthAPI middleware for API endpoints (returns 401)
func (a *Auth) RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.SessionFromRequest(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`))
	})
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// generateToken creates a random session token
func generateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// randomInt returns a random int in [0, max)
func randomInt(max int) int {
	bytes := make([]byte, 1)
	rand.Read(bytes)
	return int(bytes[0]) % max
}
