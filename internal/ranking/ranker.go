package ranking

import (
	"cmp"
	"slices"

	"github.com/fitlo/fitlo/internal/models"
)

// Rank is an entry's placement within one workout and scope
type Rank struct {
	EntryID int `json:"entry_id" yaml:"entry_id"`
	Rank    int `json:"rank" yaml:"rank"`
}

// Performance is a normalized score ready for comparison
type Performance struct {
	EntryID   int
	Value     float64
	Valid     bool // false when the raw value did not parse
	Completed bool // only meaningful for completion-based workouts
}

// CompareFunc orders two performances; a negative result means a ranks ahead of b
type CompareFunc func(a, b Performance) int

// Comparator selects the ordering policy for a score type.
// Unparseable performances always sort after parseable ones and tie with each other.
func Comparator(scoreType models.ScoreType) CompareFunc {
	switch {
	case scoreType.CompletionBased():
		return compareCompletion
	case scoreType.MoreIsBetter():
		return func(a, b Performance) int { return compareValues(a, b, true) }
	default:
		return func(a, b Performance) int { return compareValues(a, b, false) }
	}
}

func compareValues(a, b Performance, higherWins bool) int {
	if a.Valid != b.Valid {
		if a.Valid {
			return -1
		}
		return 1
	}
	if !a.Valid {
		return 0
	}
	if higherWins {
		return cmp.Compare(b.Value, a.Value)
	}
	return cmp.Compare(a.Value, b.Value)
}

// compareCompletion puts finishers first (fastest time wins),
// then non-finishers by most reps
func compareCompletion(a, b Performance) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return -1
		}
		return 1
	}
	if a.Completed {
		return compareValues(a, b, false)
	}
	return compareValues(a, b, true)
}

// Measure normalizes an entry's score for a workout
func Measure(workout models.Workout, entryID int, score models.Score) Performance {
	return measure(workoutScoreType(workout, score), workout.UnitOfMeasurement, entryID, score)
}

func measure(scoreType models.ScoreType, unit models.Unit, entryID int, score models.Score) Performance {
	completed := false
	if scoreType.CompletionBased() {
		// Finishers record a time, everyone else records reps
		completed = score.IsCompleted
		unit = models.UnitReps
		if completed {
			unit = models.UnitSeconds
		}
	}

	value, err := ParseScore(score.RepsOrTime, unit)
	return Performance{
		EntryID:   entryID,
		Value:     value,
		Valid:     err == nil,
		Completed: completed,
	}
}

// workoutScoreType prefers the workout's score type over the one copied onto the score
func workoutScoreType(workout models.Workout, score models.Score) models.ScoreType {
	if workout.ScoreType != "" {
		return workout.ScoreType
	}
	return score.ScoreType
}

// RankWorkout ranks the entries that attempted a workout.
// Entries without a non-empty score are left out; callers charge them len(result)+1.
// A workout without a score type is ranked by the type of its first attempting score.
func RankWorkout(workout models.Workout, entries []models.Entry) []Rank {
	scoreType := workout.ScoreType
	attempts := make([]models.Score, 0, len(entries))
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		score, ok := e.ScoreFor(workout.ID)
		if !ok {
			continue
		}
		if scoreType == "" {
			scoreType = score.ScoreType
		}
		attempts = append(attempts, score)
		ids = append(ids, e.ID)
	}
	if len(attempts) == 0 {
		return []Rank{}
	}

	perfs := make([]Performance, len(attempts))
	for i, score := range attempts {
		perfs[i] = measure(scoreType, workout.UnitOfMeasurement, ids[i], score)
	}

	compare := Comparator(scoreType)
	slices.SortStableFunc(perfs, compare)

	places := competitionRanks(len(perfs), func(i int) bool {
		return compare(perfs[i-1], perfs[i]) == 0
	})

	ranks := make([]Rank, len(perfs))
	for i, p := range perfs {
		ranks[i] = Rank{EntryID: p.EntryID, Rank: places[i]}
	}
	return ranks
}

// competitionRanks assigns "1224" ranks over n sorted items.
// tiedWithPrevious(i) reports whether item i ties with item i-1.
func competitionRanks(n int, tiedWithPrevious func(i int) bool) []int {
	ranks := make([]int, n)
	currentRank := 1
	tieCount := 0
	for i := 0; i < n; i++ {
		if i > 0 && !tiedWithPrevious(i) {
			currentRank += tieCount
			tieCount = 0
		}
		ranks[i] = currentRank
		tieCount++
	}
	return ranks
}
