package services

import (
	"context"
	"strings"

	"github.com/fitlo/fitlo/internal/logger"
	"github.com/fitlo/fitlo/internal/metrics"
	"github.com/fitlo/fitlo/internal/models"
	"github.com/fitlo/fitlo/internal/ranking"
	"github.com/fitlo/fitlo/internal/repository"
)

// ScoreServiceRepository defines the repository methods needed by ScoreService
type ScoreServiceRepository interface {
	repository.CompetitionRepository
	repository.WorkoutRepository
	repository.EntryRepository
	repository.ScoreRepository
}

// ScoreService records judged results
type ScoreService struct {
	log         logger.Logger
	repo        ScoreServiceRepository
	metrics     metrics.Recorder
	broadcaster Broadcaster
}

// NewScoreService creates a new ScoreService
func NewScoreService(log logger.Logger, repo ScoreServiceRepository, rec metrics.Recorder) *ScoreService {
	return &ScoreService{log: log, repo: repo, metrics: rec, broadcaster: noopBroadcaster{}}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *ScoreService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SubmitScore records an entry's result for a workout, replacing any earlier one.
// Values that cannot be parsed for the workout's unit are rejected here so
// stored scores always rank.
func (s *ScoreService) SubmitScore(ctx context.Context, entryID, workoutID int, value string, completed bool) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrScoreRequired
	}

	c, w, err := s.load(ctx, entryID, workoutID)
	if err != nil {
		return err
	}
	perf := ranking.Measure(*w, entryID, models.Score{WorkoutID: workoutID, RepsOrTime: value, IsCompleted: completed})
	if !perf.Valid {
		return ErrInvalidScore
	}

	if err := s.repo.UpsertScore(ctx, entryID, workoutID, value, completed); err != nil {
		return err
	}

	s.log.Debug("Score submitted", "competition", c.Slug, "entry_id", entryID, "workout_id", workoutID, "value", value)
	s.metrics.IncScoresSubmitted(c.Slug)
	if w.Visible {
		s.broadcaster.BroadcastLeaderboardUpdated(c.Slug)
	}
	return nil
}

// ClearScore removes an entry's result for a workout
func (s *ScoreService) ClearScore(ctx context.Context, entryID, workoutID int) error {
	c, w, err := s.load(ctx, entryID, workoutID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteScore(ctx, entryID, workoutID); err != nil {
		return notFound(err, "score")
	}

	s.log.Info("Score cleared", "competition", c.Slug, "entry_id", entryID, "workout_id", workoutID)
	if w.Visible {
		s.broadcaster.BroadcastLeaderboardUpdated(c.Slug)
	}
	return nil
}

// load fetches the workout and the competition both records belong to
func (s *ScoreService) load(ctx context.Context, entryID, workoutID int) (*models.Competition, *models.Workout, error) {
	e, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, nil, notFound(err, "entry")
	}
	w, err := s.repo.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, nil, notFound(err, "workout")
	}
	if e.CompetitionID != w.CompetitionID {
		return nil, nil, ErrWrongCompetition
	}
	if e.IsVolunteer {
		return nil, nil, ErrVolunteerScore
	}
	c, err := s.repo.GetCompetition(ctx, w.CompetitionID)
	if err != nil {
		return nil, nil, notFound(err, "competition")
	}
	return c, w, nil
}
