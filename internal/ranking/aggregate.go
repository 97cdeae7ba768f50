package ranking

import "github.com/fitlo/fitlo/internal/models"

// Aggregate is an entry's summed placement within one scope. Lower is better.
type Aggregate struct {
	TotalScore        int `json:"total_score"`
	WorkoutsCompleted int `json:"workouts_completed"`
}

// WorkoutRanks maps a workout ID to its rank list within one scope
type WorkoutRanks map[int][]Rank

// AggregateEntry sums an entry's workout ranks. A workout the entry did not attempt
// costs one place below the last entry that did.
func AggregateEntry(workouts []models.Workout, entry models.Entry, rankings WorkoutRanks) Aggregate {
	var agg Aggregate
	for _, w := range workouts {
		ranks := rankings[w.ID]

		if _, ok := entry.ScoreFor(w.ID); ok {
			if r, found := findRank(ranks, entry.ID); found {
				agg.TotalScore += r
				agg.WorkoutsCompleted++
				continue
			}
		}
		agg.TotalScore += len(ranks) + 1
	}
	return agg
}

func findRank(ranks []Rank, entryID int) (int, bool) {
	for _, r := range ranks {
		if r.EntryID == entryID {
			return r.Rank, true
		}
	}
	return 0, false
}
