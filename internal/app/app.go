package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"

	"github.com/fitlo/fitlo/internal/auth"
	"github.com/fitlo/fitlo/internal/config"
	"github.com/fitlo/fitlo/internal/handlers"
	"github.com/fitlo/fitlo/internal/logger"
	"github.com/fitlo/fitlo/internal/metrics"
	"github.com/fitlo/fitlo/internal/repository"
	"github.com/fitlo/fitlo/internal/services"
	"github.com/fitlo/fitlo/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

// Services groups the domain services so CLI commands can use them without HTTP
type Services struct {
	Competition *services.CompetitionService
	Entry       *services.EntryService
	Score       *services.ScoreService
	Leaderboard *services.LeaderboardService
	Heat        *services.HeatService
}

// App holds all application dependencies
type App struct {
	cfg      *config.Config
	log      logger.Logger
	repo     *repository.Repository
	redis    *redis.Client
	hub      *websocket.Hub
	handlers *handlers.Handlers
	services Services
	baseURL  string
	stopHub  context.CancelFunc
}

// New creates and initializes a new application instance.
// cfg.Auth.AdminPassword must already be set.
func New(cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg.Auth.AdminPassword == "" {
		return nil, stderrors.New("admin password is required")
	}

	repo, err := repository.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	store, redisClient, err := newSessionStore(cfg.Redis, log)
	if err != nil {
		repo.Close()
		return nil, err
	}
	adminAuth := auth.NewWithStore(cfg.Auth.AdminPassword, store, cfg.Auth.SessionTTL, log)

	baseURL := resolveBaseURL(cfg.Server.BaseURL, cfg.Server.Addr, realNetworkProvider{})
	rec := metrics.New()

	svc := Services{
		Competition: services.NewCompetitionService(log, repo, baseURL),
		Entry:       services.NewEntryService(log, repo),
		Score:       services.NewScoreService(log, repo, rec),
		Leaderboard: services.NewLeaderboardService(log, repo, rec),
		Heat:        services.NewHeatService(log, repo, rec),
	}

	// Initialize WebSocket hub and route service notifications through it
	hub := websocket.New(log)
	ctx, cancel := context.WithCancel(context.Background())
	hub.Start(ctx)
	svc.Competition.SetBroadcaster(hub)
	svc.Entry.SetBroadcaster(hub)
	svc.Score.SetBroadcaster(hub)
	svc.Heat.SetBroadcaster(hub)

	h := handlers.New(
		svc.Competition,
		svc.Entry,
		svc.Score,
		svc.Leaderboard,
		svc.Heat,
		adminAuth,
		hub,
		rec.Handler(),
		cfg.Server.RateLimit,
		cfg.Server.RateBurst,
		log,
	)

	return &App{
		cfg:      cfg,
		log:      log,
		repo:     repo,
		redis:    redisClient,
		hub:      hub,
		handlers: h,
		services: svc,
		baseURL:  baseURL,
		stopHub:  cancel,
	}, nil
}

// newSessionStore picks Redis when an address is configured, memory otherwise
func newSessionStore(cfg config.RedisConfig, log logger.Logger) (auth.SessionStore, *redis.Client, error) {
	if cfg.Addr == "" {
		return auth.NewMemoryStore(), nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	log.Info("Sessions stored in redis", "addr", cfg.Addr)
	return auth.NewRedisStore(client), client, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Services returns the domain services
func (a *App) Services() Services {
	return a.services
}

// BaseURL is the public address encoded into leaderboard links
func (a *App) BaseURL() string {
	return a.baseURL
}

// Close performs graceful shutdown of app resources. It is safe to call twice.
func (a *App) Close() {
	if a.stopHub != nil {
		a.stopHub()
		a.stopHub = nil
	}
	if a.redis != nil {
		a.redis.Close()
		a.redis = nil
	}
	if a.repo != nil {
		a.repo.Close()
		a.repo = nil
	}
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	a.log.Info("Server starting", "addr", a.cfg.Server.Addr, "url", a.baseURL)

	select {
	case err := <-serverErr:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// resolveBaseURL returns the configured base URL unless it is empty or points
// at localhost (useless inside a QR code scanned by a phone). In that case it
// is derived from the LAN address and the listen port.
func resolveBaseURL(configured, addr string, provider networkProvider) string {
	configured = strings.TrimRight(configured, "/")
	if configured != "" && !strings.Contains(configured, "localhost") {
		return configured
	}

	port := addr
	if _, p, err := net.SplitHostPort(addr); err == nil {
		port = ":" + p
	}
	if port == ":80" {
		port = ""
	}
	return fmt.Sprintf("http://%s%s", getPreferredIP(provider), port)
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IPv4 address for LAN access, preferring
// private ranges. Falls back to localhost if nothing suitable is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		if ip.IsPrivate() {
			return ip.String()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}
