package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/fitlo/fitlo/internal/logger"
	"github.com/fitlo/fitlo/internal/models"
	"github.com/fitlo/fitlo/internal/repository"
)

// EntryServiceRepository defines the repository methods needed by EntryService
type EntryServiceRepository interface {
	repository.CompetitionRepository
	repository.WorkoutRepository
	repository.EntryRepository
	repository.ScoreRepository
}

// EntryService handles athlete and team registration
type EntryService struct {
	log         logger.Logger
	repo        EntryServiceRepository
	faker       *gofakeit.Faker
	broadcaster Broadcaster
}

// NewEntryService creates a new EntryService
func NewEntryService(log logger.Logger, repo EntryServiceRepository) *EntryService {
	return &EntryService{
		log:         log,
		repo:        repo,
		faker:       gofakeit.New(0),
		broadcaster: noopBroadcaster{},
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *EntryService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetFaker sets the fake data source (for deterministic tests)
func (s *EntryService) SetFaker(f *gofakeit.Faker) {
	s.faker = f
}

// RegisterEntry validates and stores an entry. The ticket type, when given,
// must belong to the same competition.
func (s *EntryService) RegisterEntry(ctx context.Context, e models.Entry) (int64, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return 0, ErrNameRequired
	}

	c, err := s.repo.GetCompetition(ctx, e.CompetitionID)
	if err != nil {
		return 0, notFound(err, "competition")
	}

	if e.TicketTypeID != 0 {
		tt, err := s.repo.GetTicketType(ctx, e.TicketTypeID)
		if err != nil {
			return 0, notFound(err, "ticket type")
		}
		if tt.CompetitionID != e.CompetitionID {
			return 0, ErrWrongCompetition
		}
	}

	members := e.TeamMembers[:0:0]
	for _, m := range e.TeamMembers {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	e.TeamMembers = members

	id, err := s.repo.CreateEntry(ctx, e)
	if err != nil {
		return 0, notFound(err, "entry")
	}
	s.log.Info("Entry registered", "competition", c.Slug, "entry_id", id, "name", e.Name)
	s.broadcaster.BroadcastLeaderboardUpdated(c.Slug)
	return id, nil
}

// ListEntries returns a competition's entries with their scores
func (s *EntryService) ListEntries(ctx context.Context, competitionID int) ([]models.Entry, error) {
	return s.repo.ListEntries(ctx, competitionID)
}

// GetEntry returns one entry with its scores
func (s *EntryService) GetEntry(ctx context.Context, id int) (*models.Entry, error) {
	e, err := s.repo.GetEntry(ctx, id)
	return e, notFound(err, "entry")
}

// DeleteEntry removes an entry along with its scores and heat assignments
func (s *EntryService) DeleteEntry(ctx context.Context, id int) error {
	e, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return notFound(err, "entry")
	}
	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		return notFound(err, "entry")
	}

	c, err := s.repo.GetCompetition(ctx, e.CompetitionID)
	if err != nil {
		return notFound(err, "competition")
	}
	s.log.Info("Entry deleted", "competition", c.Slug, "entry_id", id)
	s.broadcaster.BroadcastLeaderboardUpdated(c.Slug)
	return nil
}

// SeedMockEntries registers count fake athletes spread across the competing
// ticket types. With withScores each one also gets a plausible score per workout.
func (s *EntryService) SeedMockEntries(ctx context.Context, competitionID, count int, withScores bool) (int, error) {
	if count < 1 || count > 200 {
		return 0, ErrInvalidSeedCount
	}

	c, err := s.repo.GetCompetition(ctx, competitionID)
	if err != nil {
		return 0, notFound(err, "competition")
	}

	types, err := s.repo.ListTicketTypes(ctx, competitionID)
	if err != nil {
		return 0, err
	}
	var competing []models.TicketType
	for _, tt := range types {
		if !tt.IsVolunteer {
			competing = append(competing, tt)
		}
	}

	var workouts []models.Workout
	if withScores {
		if workouts, err = s.repo.ListWorkouts(ctx, competitionID); err != nil {
			return 0, err
		}
	}

	created := 0
	for i := 0; i < count; i++ {
		e := models.Entry{CompetitionID: competitionID, Name: s.faker.Name()}
		if len(competing) > 0 {
			e.TicketTypeID = competing[i%len(competing)].ID
		}

		id, err := s.repo.CreateEntry(ctx, e)
		if err != nil {
			return created, fmt.Errorf("seeding entry %d: %w", i+1, err)
		}
		created++

		for _, w := range workouts {
			// Leave some scores out so the missing-score penalty shows up
			if s.faker.Number(1, 10) == 1 {
				continue
			}
			value, completed := s.fakeScore(w)
			if err := s.repo.UpsertScore(ctx, int(id), w.ID, value, completed); err != nil {
				return created, fmt.Errorf("seeding score for entry %d: %w", id, err)
			}
		}
	}

	s.log.Info("Seeded mock entries", "competition", c.Slug, "count", created, "with_scores", withScores)
	s.broadcaster.BroadcastLeaderboardUpdated(c.Slug)
	return created, nil
}

// fakeScore returns a value that parses for the workout's unit
func (s *EntryService) fakeScore(w models.Workout) (string, bool) {
	if w.ScoreType.CompletionBased() {
		if s.faker.Bool() {
			return clock(s.faker.Number(240, 1200)), true
		}
		return fmt.Sprint(s.faker.Number(20, 150)), false
	}

	switch w.UnitOfMeasurement {
	case models.UnitSeconds, models.UnitMinutes:
		return clock(s.faker.Number(90, 1500)), true
	case models.UnitKilograms:
		return fmt.Sprintf("%.1f", s.faker.Float64Range(40, 200)), true
	case models.UnitPounds:
		return fmt.Sprint(s.faker.Number(95, 450)), true
	case models.UnitMeters:
		return fmt.Sprint(s.faker.Number(500, 5000)), true
	default:
		return fmt.Sprint(s.faker.Number(10, 300)), true
	}
}

func clock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
