package services

import (
	"context"
	"io"

	"github.com/fitlo/fitlo/internal/models"
)

// Broadcaster pushes change notifications to live clients
type Broadcaster interface {
	BroadcastLeaderboardUpdated(competition string)
	BroadcastHeatUpdated(competition string, heatID int)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastLeaderboardUpdated(string) {}
func (noopBroadcaster) BroadcastHeatUpdated(string, int)   {}

// CompetitionServicer defines the interface for competition setup operations
type CompetitionServicer interface {
	CreateCompetition(ctx context.Context, name string, policy models.HeatLimitPolicy) (*models.Competition, error)
	ListCompetitions(ctx context.Context) ([]models.Competition, error)
	GetCompetition(ctx context.Context, id int) (*models.Competition, error)
	GetCompetitionBySlug(ctx context.Context, slug string) (*models.Competition, error)
	SetHeatLimitPolicy(ctx context.Context, id int, policy models.HeatLimitPolicy) error
	CreateTicketType(ctx context.Context, tt models.TicketType) (int64, error)
	ListTicketTypes(ctx context.Context, competitionID int) ([]models.TicketType, error)
	CreateWorkout(ctx context.Context, w models.Workout) (int64, error)
	ListWorkouts(ctx context.Context, competitionID int) ([]models.Workout, error)
	SetWorkoutVisibility(ctx context.Context, id int, visible bool) error
	LeaderboardURL(ctx context.Context, id int) (string, error)
	GenerateQRImage(ctx context.Context, id int) ([]byte, error)
	SetBroadcaster(b Broadcaster)
}

// EntryServicer defines the interface for entry operations
type EntryServicer interface {
	RegisterEntry(ctx context.Context, e models.Entry) (int64, error)
	ListEntries(ctx context.Context, competitionID int) ([]models.Entry, error)
	GetEntry(ctx context.Context, id int) (*models.Entry, error)
	DeleteEntry(ctx context.Context, id int) error
	SeedMockEntries(ctx context.Context, competitionID, count int, withScores bool) (int, error)
	SetBroadcaster(b Broadcaster)
}

// ScoreServicer defines the interface for score operations
type ScoreServicer interface {
	SubmitScore(ctx context.Context, entryID, workoutID int, value string, completed bool) error
	ClearScore(ctx context.Context, entryID, workoutID int) error
	SetBroadcaster(b Broadcaster)
}

// LeaderboardServicer defines the interface for leaderboard operations
type LeaderboardServicer interface {
	PublicLeaderboard(ctx context.Context, slug string) (*Standings, error)
	AdminLeaderboard(ctx context.Context, competitionID int) (*Standings, error)
	ExportXLSX(ctx context.Context, competitionID int, w io.Writer) error
}

// HeatServicer defines the interface for heat scheduling operations
type HeatServicer interface {
	CreateHeat(ctx context.Context, h models.Heat) (int64, error)
	ListHeats(ctx context.Context, competitionID int) ([]HeatDetail, error)
	ListHeatsBySlug(ctx context.Context, slug string) ([]HeatDetail, error)
	AssignEntry(ctx context.Context, heatID, entryID, lane int) (int, error)
	RemoveEntry(ctx context.Context, heatID, entryID int) error
	SetBroadcaster(b Broadcaster)
}

// Ensure concrete types implement interfaces
var (
	_ CompetitionServicer = (*CompetitionService)(nil)
	_ EntryServicer       = (*EntryService)(nil)
	_ ScoreServicer       = (*ScoreService)(nil)
	_ LeaderboardServicer = (*LeaderboardService)(nil)
	_ HeatServicer        = (*HeatService)(nil)
)
