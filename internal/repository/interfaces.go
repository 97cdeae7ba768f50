package repository

import (
	"context"

	"github.com/fitlo/fitlo/internal/models"
)

// CompetitionRepository defines competition and ticket type data operations
type CompetitionRepository interface {
	CreateCompetition(ctx context.Context, name, slug string, policy models.HeatLimitPolicy) (int64, error)
	ListCompetitions(ctx context.Context) ([]models.Competition, error)
	GetCompetition(ctx context.Context, id int) (*models.Competition, error)
	GetCompetitionBySlug(ctx context.Context, slug string) (*models.Competition, error)
	SetHeatLimitPolicy(ctx context.Context, id int, policy models.HeatLimitPolicy) error
	CreateTicketType(ctx context.Context, tt models.TicketType) (int64, error)
	ListTicketTypes(ctx context.Context, competitionID int) ([]models.TicketType, error)
	GetTicketType(ctx context.Context, id int) (*models.TicketType, error)
}

// WorkoutRepository defines workout data operations
type WorkoutRepository interface {
	CreateWorkout(ctx context.Context, w models.Workout) (int64, error)
	ListWorkouts(ctx context.Context, competitionID int) ([]models.Workout, error)
	GetWorkout(ctx context.Context, id int) (*models.Workout, error)
	SetWorkoutVisibility(ctx context.Context, id int, visible bool) error
}

// EntryRepository defines entry data operations
type EntryRepository interface {
	CreateEntry(ctx context.Context, e models.Entry) (int64, error)
	ListEntries(ctx context.Context, competitionID int) ([]models.Entry, error)
	GetEntry(ctx context.Context, id int) (*models.Entry, error)
	DeleteEntry(ctx context.Context, id int) error
}

// ScoreRepository defines score data operations
type ScoreRepository interface {
	UpsertScore(ctx context.Context, entryID, workoutID int, value string, completed bool) error
	DeleteScore(ctx context.Context, entryID, workoutID int) error
}

// LanePicker chooses a lane given a heat's current assignments
type LanePicker func(assignments []models.HeatAssignment) (int, error)

// HeatRepository defines heat scheduling data operations
type HeatRepository interface {
	CreateHeat(ctx context.Context, h models.Heat) (int64, error)
	ListHeats(ctx context.Context, competitionID int) ([]models.Heat, error)
	GetHeat(ctx context.Context, id int) (*models.Heat, error)
	ListHeatAssignments(ctx context.Context, heatID int) ([]models.HeatAssignment, error)
	AssignHeatLane(ctx context.Context, heatID, entryID int, pick LanePicker) (int, error)
	DeleteHeatAssignment(ctx context.Context, heatID, entryID int) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	CompetitionRepository
	WorkoutRepository
	EntryRepository
	ScoreRepository
	HeatRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
