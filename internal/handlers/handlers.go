package handlers

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/fitlo/fitlo/internal/auth"
	"github.com/fitlo/fitlo/internal/logger"
	"github.com/fitlo/fitlo/internal/metrics"
	"github.com/fitlo/fitlo/internal/services"
	"github.com/fitlo/fitlo/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Competition services.CompetitionServicer
	Entry       services.EntryServicer
	Score       services.ScoreServicer
	Leaderboard services.LeaderboardServicer
	Heat        services.HeatServicer
	Auth        *auth.Auth
	Hub         *websocket.Hub
	Metrics     http.Handler
	Log         HTTPLogger
	limiter     *IPRateLimiter
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies.
// A zero rateLimit disables per-IP limiting of public routes.
func New(
	competition services.CompetitionServicer,
	entry services.EntryServicer,
	score services.ScoreServicer,
	leaderboard services.LeaderboardServicer,
	heat services.HeatServicer,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	metricsHandler http.Handler,
	rateLimit float64,
	rateBurst int,
	log HTTPLogger,
) *Handlers {
	h := &Handlers{
		Competition: competition,
		Entry:       entry,
		Score:       score,
		Leaderboard: leaderboard,
		Heat:        heat,
		Auth:        adminAuth,
		Hub:         hub,
		Metrics:     metricsHandler,
		Log:         log,
	}
	if rateLimit > 0 {
		h.limiter = NewIPRateLimiter(rate.Limit(rateLimit), rateBurst)
	}
	return h
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance with a known admin password
// ("test-password"), an idle hub and no rate limiting
func NewForTesting(
	competition services.CompetitionServicer,
	entry services.EntryServicer,
	score services.ScoreServicer,
	leaderboard services.LeaderboardServicer,
	heat services.HeatServicer,
) *Handlers {
	return &Handlers{
		Competition: competition,
		Entry:       entry,
		Score:       score,
		Leaderboard: leaderboard,
		Heat:        heat,
		Auth:        auth.New("test-password"),
		Hub:         websocket.New(logger.NewDiscard()),
		Metrics:     metrics.New().Handler(),
		Log:         NoopHTTPLogger{},
	}
}
