package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/fitlo/fitlo/internal/errors"
	"github.com/fitlo/fitlo/internal/heats"
	"github.com/fitlo/fitlo/internal/logger"
	"github.com/fitlo/fitlo/internal/metrics"
	"github.com/fitlo/fitlo/internal/models"
	"github.com/fitlo/fitlo/internal/repository"
)

const maxLanes = 64

// HeatServiceRepository defines the repository methods needed by HeatService
type HeatServiceRepository interface {
	repository.CompetitionRepository
	repository.WorkoutRepository
	repository.EntryRepository
	repository.HeatRepository
}

// HeatDetail is a heat with its current lane assignments
type HeatDetail struct {
	models.Heat
	Assignments []models.HeatAssignment `json:"assignments"`
}

// HeatService schedules entries into heats
type HeatService struct {
	log         logger.Logger
	repo        HeatServiceRepository
	metrics     metrics.Recorder
	broadcaster Broadcaster
}

// NewHeatService creates a new HeatService
func NewHeatService(log logger.Logger, repo HeatServiceRepository, rec metrics.Recorder) *HeatService {
	return &HeatService{log: log, repo: repo, metrics: rec, broadcaster: noopBroadcaster{}}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *HeatService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateHeat adds a heat for one of the competition's workouts
func (s *HeatService) CreateHeat(ctx context.Context, h models.Heat) (int64, error) {
	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		return 0, ErrNameRequired
	}
	if h.Lanes < 1 || h.Lanes > maxLanes {
		return 0, ErrInvalidLanes
	}

	w, err := s.repo.GetWorkout(ctx, h.WorkoutID)
	if err != nil {
		return 0, notFound(err, "workout")
	}
	if h.CompetitionID == 0 {
		h.CompetitionID = w.CompetitionID
	}
	if w.CompetitionID != h.CompetitionID {
		return 0, ErrWrongCompetition
	}

	id, err := s.repo.CreateHeat(ctx, h)
	if err != nil {
		return 0, notFound(err, "heat")
	}
	if c, err := s.repo.GetCompetition(ctx, h.CompetitionID); err == nil {
		s.broadcaster.BroadcastHeatUpdated(c.Slug, int(id))
	}
	return id, nil
}

// ListHeats returns a competition's heats with their assignments
func (s *HeatService) ListHeats(ctx context.Context, competitionID int) ([]HeatDetail, error) {
	list, err := s.repo.ListHeats(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	details := make([]HeatDetail, 0, len(list))
	for _, h := range list {
		assignments, err := s.repo.ListHeatAssignments(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, HeatDetail{Heat: h, Assignments: assignments})
	}
	return details, nil
}

// ListHeatsBySlug is ListHeats for the public competition slug
func (s *HeatService) ListHeatsBySlug(ctx context.Context, slug string) ([]HeatDetail, error) {
	c, err := s.repo.GetCompetitionBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "competition")
	}
	return s.ListHeats(ctx, c.ID)
}

// AssignEntry places an entry into a heat and returns its lane. A lane of 0
// picks the lowest free lane. The capacity check and the insert run in one
// transaction so concurrent assignments cannot overfill a heat.
func (s *HeatService) AssignEntry(ctx context.Context, heatID, entryID, lane int) (int, error) {
	h, err := s.repo.GetHeat(ctx, heatID)
	if err != nil {
		return 0, notFound(err, "heat")
	}
	e, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return 0, notFound(err, "entry")
	}
	if e.CompetitionID != h.CompetitionID {
		return 0, ErrWrongCompetition
	}
	if e.IsVolunteer {
		return 0, ErrVolunteerInHeat
	}
	if lane < 0 || lane > h.Lanes {
		return 0, errors.Validationf("lane must be between 1 and %d", h.Lanes)
	}

	c, err := s.repo.GetCompetition(ctx, h.CompetitionID)
	if err != nil {
		return 0, notFound(err, "competition")
	}

	var tt models.TicketType
	if e.TicketTypeID != 0 {
		got, err := s.repo.GetTicketType(ctx, e.TicketTypeID)
		if err != nil {
			return 0, notFound(err, "ticket type")
		}
		tt = *got
	}

	assigned, err := s.repo.AssignHeatLane(ctx, heatID, entryID, func(assignments []models.HeatAssignment) (int, error) {
		if heats.Contains(assignments, entryID) {
			return 0, ErrAlreadyAssigned
		}
		if len(assignments) >= h.Lanes {
			return 0, ErrHeatFull
		}
		if heats.IsFull(*h, assignments, c.HeatLimitPolicy, tt) {
			return 0, ErrTicketTypeHeatFull
		}
		if lane != 0 {
			for _, a := range assignments {
				if a.Lane == lane {
					return 0, ErrLaneTaken
				}
			}
			return lane, nil
		}
		next, ok := heats.NextLane(*h, assignments)
		if !ok {
			return 0, ErrHeatFull
		}
		return next, nil
	})
	if err != nil {
		s.metrics.IncHeatAssignments(c.Slug, outcome(err))
		if stderrors.Is(err, repository.ErrDuplicate) {
			return 0, ErrAlreadyAssigned
		}
		return 0, err
	}

	s.metrics.IncHeatAssignments(c.Slug, "assigned")
	s.log.Info("Entry assigned to heat", "competition", c.Slug, "heat_id", heatID, "entry_id", entryID, "lane", assigned)
	s.broadcaster.BroadcastHeatUpdated(c.Slug, heatID)
	return assigned, nil
}

// RemoveEntry takes an entry out of a heat
func (s *HeatService) RemoveEntry(ctx context.Context, heatID, entryID int) error {
	h, err := s.repo.GetHeat(ctx, heatID)
	if err != nil {
		return notFound(err, "heat")
	}
	if err := s.repo.DeleteHeatAssignment(ctx, heatID, entryID); err != nil {
		return notFound(err, "heat assignment")
	}
	if c, err := s.repo.GetCompetition(ctx, h.CompetitionID); err == nil {
		s.broadcaster.BroadcastHeatUpdated(c.Slug, heatID)
	}
	return nil
}

func outcome(err error) string {
	switch errors.KindOf(err) {
	case errors.ErrCapacity:
		return "full"
	case errors.ErrConflict:
		return "conflict"
	default:
		if stderrors.Is(err, repository.ErrDuplicate) {
			return "conflict"
		}
		return "error"
	}
}
