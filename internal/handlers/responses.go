package handlers

import (
	"github.com/fitlo/fitlo/internal/models"
	"github.com/fitlo/fitlo/internal/ranking"
	"github.com/fitlo/fitlo/internal/services"
)

// IDResponse is returned when a record is created
type IDResponse struct {
	ID int64 `json:"id"`
}

// SeedResponse reports how many mock entries were created
type SeedResponse struct {
	Created int `json:"created"`
}

// AssignmentResponse is the lane an entry was placed in
type AssignmentResponse struct {
	HeatID  int `json:"heat_id"`
	EntryID int `json:"entry_id"`
	Lane    int `json:"lane"`
}

// LeaderboardRow is one entry's standing within the requested scope
type LeaderboardRow struct {
	ranking.RankedEntry
	Rank         int         `json:"rank"`
	TotalScore   int         `json:"total_score"`
	WorkoutRanks map[int]int `json:"workout_ranks"` // workout ID -> rank within the scope
}

// LeaderboardResponse is the ranked view of one scope
type LeaderboardResponse struct {
	Competition models.Competition `json:"competition"`
	Workouts    []models.Workout   `json:"workouts"`
	Scope       string             `json:"scope"`
	Scopes      []string           `json:"scopes"`
	Entries     []LeaderboardRow   `json:"entries"`
}

// newLeaderboardResponse projects standings onto one scope. In the overall
// scope rows carry overall rank and total, otherwise the category's.
func newLeaderboardResponse(st *services.Standings, scope string) (*LeaderboardResponse, error) {
	if scope == "" {
		scope = ranking.ScopeAll
	}
	entries, err := st.Scope(scope)
	if err != nil {
		return nil, err
	}

	rows := make([]LeaderboardRow, 0, len(entries))
	for _, e := range entries {
		row := LeaderboardRow{
			RankedEntry:  e,
			Rank:         e.CategoryRank,
			TotalScore:   e.CategoryTotalScore,
			WorkoutRanks: make(map[int]int, len(st.Workouts)),
		}
		if scope == ranking.ScopeAll {
			row.Rank = e.OverallRank
			row.TotalScore = e.OverallTotalScore
		}
		for _, w := range st.Workouts {
			if rank, ok := st.WorkoutRank(scope, w.ID, e.ID); ok {
				row.WorkoutRanks[w.ID] = rank
			}
		}
		rows = append(rows, row)
	}

	return &LeaderboardResponse{
		Competition: st.Competition,
		Workouts:    st.Workouts,
		Scope:       scope,
		Scopes:      st.Scopes,
		Entries:     rows,
	}, nil
}
