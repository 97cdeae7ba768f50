package testutil

import (
	"context"
	"testing"

	"github.com/fitlo/fitlo/internal/models"
	"github.com/fitlo/fitlo/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// Fixture is a small competition seeded into a test repository
type Fixture struct {
	CompetitionID int
	Slug          string
	RxID          int
	ScaledID      int
	VolunteerID   int
	WorkoutIDs    []int
}

// SeedCompetition creates a competition with RX, Scaled and Volunteer
// ticket types and two visible workouts (a reps workout and a timed one).
func SeedCompetition(t *testing.T, repo repository.FullRepository) Fixture {
	t.Helper()
	ctx := context.Background()

	compID, err := repo.CreateCompetition(ctx, "Spring Throwdown", "spring-throwdown", models.HeatLimitLanes)
	if err != nil {
		t.Fatalf("failed to create competition: %v", err)
	}
	f := Fixture{CompetitionID: int(compID), Slug: "spring-throwdown"}

	for _, tt := range []struct {
		name      string
		volunteer bool
		dst       *int
	}{
		{"RX", false, &f.RxID},
		{"Scaled", false, &f.ScaledID},
		{"Volunteer", true, &f.VolunteerID},
	} {
		id, err := repo.CreateTicketType(ctx, models.TicketType{
			CompetitionID: f.CompetitionID,
			Name:          tt.name,
			IsVolunteer:   tt.volunteer,
		})
		if err != nil {
			t.Fatalf("failed to create ticket type %s: %v", tt.name, err)
		}
		*tt.dst = int(id)
	}

	for i, w := range []models.Workout{
		{Name: "Max Burpees", UnitOfMeasurement: models.UnitReps, ScoreType: models.ScoreRepsMoreIsBetter},
		{Name: "Fran", UnitOfMeasurement: models.UnitSeconds, ScoreType: models.ScoreTimeLessIsBetter},
	} {
		w.CompetitionID = f.CompetitionID
		w.DisplayOrder = i + 1
		w.Visible = true
		id, err := repo.CreateWorkout(ctx, w)
		if err != nil {
			t.Fatalf("failed to create workout %s: %v", w.Name, err)
		}
		f.WorkoutIDs = append(f.WorkoutIDs, int(id))
	}

	return f
}

// AddEntry registers an entry and fails the test on error
func AddEntry(t *testing.T, repo repository.FullRepository, competitionID, ticketTypeID int, name string) int {
	t.Helper()
	id, err := repo.CreateEntry(context.Background(), models.Entry{
		CompetitionID: competitionID,
		TicketTypeID:  ticketTypeID,
		Name:          name,
	})
	if err != nil {
		t.Fatalf("failed to create entry %s: %v", name, err)
	}
	return int(id)
}
