package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/fitlo/fitlo/internal/errors"
	"github.com/fitlo/fitlo/internal/logger"
	"github.com/fitlo/fitlo/internal/models"
	"github.com/fitlo/fitlo/internal/ranking"
	"github.com/fitlo/fitlo/internal/repository"
)

// CompetitionServiceRepository defines the repository methods needed by CompetitionService
type CompetitionServiceRepository interface {
	repository.CompetitionRepository
	repository.WorkoutRepository
}

// CompetitionService handles competition setup: ticket types, workouts and sharing
type CompetitionService struct {
	log         logger.Logger
	repo        CompetitionServiceRepository
	baseURL     string
	newSlug     func() string
	broadcaster Broadcaster
}

// NewCompetitionService creates a new CompetitionService.
// baseURL is used to build the public leaderboard link encoded in QR codes.
func NewCompetitionService(log logger.Logger, repo CompetitionServiceRepository, baseURL string) *CompetitionService {
	return &CompetitionService{
		log:         log,
		repo:        repo,
		baseURL:     strings.TrimRight(baseURL, "/"),
		newSlug:     uuid.NewString,
		broadcaster: noopBroadcaster{},
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *CompetitionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetSlugGenerator replaces the slug source (for testing)
func (s *CompetitionService) SetSlugGenerator(fn func() string) {
	s.newSlug = fn
}

// CreateCompetition creates a competition with a fresh public slug
func (s *CompetitionService) CreateCompetition(ctx context.Context, name string, policy models.HeatLimitPolicy) (*models.Competition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if policy == "" {
		policy = models.HeatLimitLanes
	}
	if !policy.Valid() {
		return nil, errors.Validationf("unknown heat limit policy %q", policy)
	}

	slug := s.newSlug()
	id, err := s.repo.CreateCompetition(ctx, name, slug, policy)
	if err != nil {
		return nil, notFound(err, "competition")
	}
	s.log.Info("Competition created", "id", id, "slug", slug)
	return s.GetCompetition(ctx, int(id))
}

// ListCompetitions returns every competition
func (s *CompetitionService) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	return s.repo.ListCompetitions(ctx)
}

// GetCompetition returns a competition by id
func (s *CompetitionService) GetCompetition(ctx context.Context, id int) (*models.Competition, error) {
	c, err := s.repo.GetCompetition(ctx, id)
	return c, notFound(err, "competition")
}

// GetCompetitionBySlug returns a competition by its public slug
func (s *CompetitionService) GetCompetitionBySlug(ctx context.Context, slug string) (*models.Competition, error) {
	c, err := s.repo.GetCompetitionBySlug(ctx, slug)
	return c, notFound(err, "competition")
}

// SetHeatLimitPolicy changes how heat capacity is enforced
func (s *CompetitionService) SetHeatLimitPolicy(ctx context.Context, id int, policy models.HeatLimitPolicy) error {
	if !policy.Valid() {
		return errors.Validationf("unknown heat limit policy %q", policy)
	}
	return notFound(s.repo.SetHeatLimitPolicy(ctx, id, policy), "competition")
}

// CreateTicketType adds a ticket type to a competition
func (s *CompetitionService) CreateTicketType(ctx context.Context, tt models.TicketType) (int64, error) {
	tt.Name = strings.TrimSpace(tt.Name)
	if tt.Name == "" {
		return 0, ErrNameRequired
	}
	if ranking.IsReservedName(tt.Name) {
		return 0, ErrReservedName
	}
	if tt.MaxEntriesPerHeat < 0 {
		return 0, errors.Validation("max entries per heat cannot be negative")
	}
	if _, err := s.GetCompetition(ctx, tt.CompetitionID); err != nil {
		return 0, err
	}
	id, err := s.repo.CreateTicketType(ctx, tt)
	return id, notFound(err, "ticket type")
}

// ListTicketTypes returns a competition's ticket types
func (s *CompetitionService) ListTicketTypes(ctx context.Context, competitionID int) ([]models.TicketType, error) {
	return s.repo.ListTicketTypes(ctx, competitionID)
}

// CreateWorkout adds a workout to a competition
func (s *CompetitionService) CreateWorkout(ctx context.Context, w models.Workout) (int64, error) {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return 0, ErrNameRequired
	}
	if !w.UnitOfMeasurement.Valid() {
		return 0, errors.Validationf("unknown unit of measurement %q", w.UnitOfMeasurement)
	}
	if !w.ScoreType.Valid() {
		return 0, errors.Validationf("unknown score type %q", w.ScoreType)
	}
	c, err := s.GetCompetition(ctx, w.CompetitionID)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.CreateWorkout(ctx, w)
	if err != nil {
		return 0, notFound(err, "workout")
	}
	if w.Visible {
		s.broadcaster.BroadcastLeaderboardUpdated(c.Slug)
	}
	return id, nil
}

// ListWorkouts returns a competition's workouts by display order
func (s *CompetitionService) ListWorkouts(ctx context.Context, competitionID int) ([]models.Workout, error) {
	return s.repo.ListWorkouts(ctx, competitionID)
}

// SetWorkoutVisibility shows or hides a workout on the public leaderboard
func (s *CompetitionService) SetWorkoutVisibility(ctx context.Context, id int, visible bool) error {
	w, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		return notFound(err, "workout")
	}
	if err := s.repo.SetWorkoutVisibility(ctx, id, visible); err != nil {
		return notFound(err, "workout")
	}

	c, err := s.GetCompetition(ctx, w.CompetitionID)
	if err != nil {
		return err
	}
	s.log.Info("Workout visibility changed", "workout_id", id, "visible", visible)
	s.broadcaster.BroadcastLeaderboardUpdated(c.Slug)
	return nil
}

// LeaderboardURL returns the public leaderboard link for a competition
func (s *CompetitionService) LeaderboardURL(ctx context.Context, id int) (string, error) {
	c, err := s.GetCompetition(ctx, id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/competitions/%s/leaderboard", s.baseURL, c.Slug), nil
}

// GenerateQRImage generates a PNG QR code pointing at the public leaderboard
func (s *CompetitionService) GenerateQRImage(ctx context.Context, id int) ([]byte, error) {
	url, err := s.LeaderboardURL(ctx, id)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(url, qrcode.Medium, 256)
}
