package mock

import (
	"context"

	"github.com/fitlo/fitlo/internal/models"
	"github.com/fitlo/fitlo/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.UpsertScoreError = errors.New("database error")
//	svc := services.NewScoreService(log, mockRepo, hub, metrics.Noop{})
//	err := svc.SubmitScore(ctx, compID, entryID, workoutID, "42", false)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Competition Errors =====
	CreateCompetitionError    error
	ListCompetitionsError     error
	GetCompetitionError       error
	GetCompetitionBySlugError error
	SetHeatLimitPolicyError   error
	CreateTicketTypeError     error
	ListTicketTypesError      error
	GetTicketTypeError        error

	// ===== Workout Errors =====
	CreateWorkoutError        error
	ListWorkoutsError         error
	GetWorkoutError           error
	SetWorkoutVisibilityError error

	// ===== Entry Errors =====
	CreateEntryError  error
	ListEntriesError  error
	GetEntryError     error
	DeleteEntryError  error
	UpsertScoreError  error
	DeleteScoreError  error

	// ===== Heat Errors =====
	CreateHeatError           error
	ListHeatsError            error
	GetHeatError              error
	ListHeatAssignmentsError  error
	AssignHeatLaneError       error
	DeleteHeatAssignmentError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Competition Methods =====

func (m *Repository) CreateCompetition(ctx context.Context, name, slug string, policy models.HeatLimitPolicy) (int64, error) {
	if m.CreateCompetitionError != nil {
		return 0, m.CreateCompetitionError
	}
	return m.FullRepository.CreateCompetition(ctx, name, slug, policy)
}

func (m *Repository) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	if m.ListCompetitionsError != nil {
		return nil, m.ListCompetitionsError
	}
	return m.FullRepository.ListCompetitions(ctx)
}

func (m *Repository) GetCompetition(ctx context.Context, id int) (*models.Competition, error) {
	if m.GetCompetitionError != nil {
		return nil, m.GetCompetitionError
	}
	return m.FullRepository.GetCompetition(ctx, id)
}

func (m *Repository) GetCompetitionBySlug(ctx context.Context, slug string) (*models.Competition, error) {
	if m.GetCompetitionBySlugError != nil {
		return nil, m.GetCompetitionBySlugError
	}
	return m.FullRepository.GetCompetitionBySlug(ctx, slug)
}

func (m *Repository) SetHeatLimitPolicy(ctx context.Context, id int, policy models.HeatLimitPolicy) error {
	if m.SetHeatLimitPolicyError != nil {
		return m.SetHeatLimitPolicyError
	}
	return m.FullRepository.SetHeatLimitPolicy(ctx, id, policy)
}

func (m *Repository) CreateTicketType(ctx context.Context, tt models.TicketType) (int64, error) {
	if m.CreateTicketTypeError != nil {
		return 0, m.CreateTicketTypeError
	}
	return m.FullRepository.CreateTicketType(ctx, tt)
}

func (m *Repository) ListTicketTypes(ctx context.Context, competitionID int) ([]models.TicketType, error) {
	if m.ListTicketTypesError != nil {
		return nil, m.ListTicketTypesError
	}
	return m.FullRepository.ListTicketTypes(ctx, competitionID)
}

func (m *Repository) GetTicketType(ctx context.Context, id int) (*models.TicketType, error) {
	if m.GetTicketTypeError != nil {
		return nil, m.GetTicketTypeError
	}
	return m.FullRepository.GetTicketType(ctx, id)
}

// ===== Workout Methods =====

func (m *Repository) CreateWorkout(ctx context.Context, w models.Workout) (int64, error) {
	if m.CreateWorkoutError != nil {
		return 0, m.CreateWorkoutError
	}
	return m.FullRepository.CreateWorkout(ctx, w)
}

func (m *Repository) ListWorkouts(ctx context.Context, competitionID int) ([]models.Workout, error) {
	if m.ListWorkoutsError != nil {
		return nil, m.ListWorkoutsError
	}
	return m.FullRepository.ListWorkouts(ctx, competitionID)
}

func (m *Repository) GetWorkout(ctx context.Context, id int) (*models.Workout, error) {
	if m.GetWorkoutError != nil {
		return nil, m.GetWorkoutError
	}
	return m.FullRepository.GetWorkout(ctx, id)
}

func (m *Repository) SetWorkoutVisibility(ctx context.Context, id int, visible bool) error {
	if m.SetWorkoutVisibilityError != nil {
		return m.SetWorkoutVisibilityError
	}
	return m.FullRepository.SetWorkoutVisibility(ctx, id, visible)
}

// ===== Entry Methods =====

func (m *Repository) CreateEntry(ctx context.Context, e models.Entry) (int64, error) {
	if m.CreateEntryError != nil {
		return 0, m.CreateEntryError
	}
	return m.FullRepository.CreateEntry(ctx, e)
}

func (m *Repository) ListEntries(ctx context.Context, competitionID int) ([]models.Entry, error) {
	if m.ListEntriesError != nil {
		return nil, m.ListEntriesError
	}
	return m.FullRepository.ListEntries(ctx, competitionID)
}

func (m *Repository) GetEntry(ctx context.Context, id int) (*models.Entry, error) {
	if m.GetEntryError != nil {
		return nil, m.GetEntryError
	}
	return m.FullRepository.GetEntry(ctx, id)
}

func (m *Repository) DeleteEntry(ctx context.Context, id int) error {
	if m.DeleteEntryError != nil {
		return m.DeleteEntryError
	}
	return m.FullRepository.DeleteEntry(ctx, id)
}

func (m *Repository) UpsertScore(ctx context.Context, entryID, workoutID int, value string, completed bool) error {
	if m.UpsertScoreError != nil {
		return m.UpsertScoreError
	}
	return m.FullRepository.UpsertScore(ctx, entryID, workoutID, value, completed)
}

func (m *Repository) DeleteScore(ctx context.Context, entryID, workoutID int) error {
	if m.DeleteScoreError != nil {
		return m.DeleteScoreError
	}
	return m.FullRepository.DeleteScore(ctx, entryID, workoutID)
}

// ===== Heat Methods =====

func (m *Repository) CreateHeat(ctx context.Context, h models.Heat) (int64, error) {
	if m.CreateHeatError != nil {
		return 0, m.CreateHeatError
	}
	return m.FullRepository.CreateHeat(ctx, h)
}

func (m *Repository) ListHeats(ctx context.Context, competitionID int) ([]models.Heat, error) {
	if m.ListHeatsError != nil {
		return nil, m.ListHeatsError
	}
	return m.FullRepository.ListHeats(ctx, competitionID)
}

func (m *Repository) GetHeat(ctx context.Context, id int) (*models.Heat, error) {
	if m.GetHeatError != nil {
		return nil, m.GetHeatError
	}
	return m.FullRepository.GetHeat(ctx, id)
}

func (m *Repository) ListHeatAssignments(ctx context.Context, heatID int) ([]models.HeatAssignment, error) {
	if m.ListHeatAssignmentsError != nil {
		return nil, m.ListHeatAssignmentsError
	}
	return m.FullRepository.ListHeatAssignments(ctx, heatID)
}

func (m *Repository) AssignHeatLane(ctx context.Context, heatID, entryID int, pick repository.LanePicker) (int, error) {
	if m.AssignHeatLaneError != nil {
		return 0, m.AssignHeatLaneError
	}
	return m.FullRepository.AssignHeatLane(ctx, heatID, entryID, pick)
}

func (m *Repository) DeleteHeatAssignment(ctx context.Context, heatID, entryID int) error {
	if m.DeleteHeatAssignmentError != nil {
		return m.DeleteHeatAssignmentError
	}
	return m.FullRepository.DeleteHeatAssignment(ctx, heatID, entryID)
}

var _ repository.FullRepository = (*Repository)(nil)
