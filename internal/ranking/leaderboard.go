package ranking

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fitlo/fitlo/internal/models"
)

// ScopeAll ranks every entry regardless of category
const ScopeAll = "All"

// Uncategorized is the scope of entries whose ticket type has no name
const Uncategorized = "Uncategorized"

// ReservedCategory is the scope of a ticket type named like ScopeAll, so it cannot merge into it
const ReservedCategory = "All Category"

// Table holds rank lists per scope and workout: scope -> workout ID -> ranks
type Table map[string]WorkoutRanks

// RankedEntry is an entry annotated with its standings
type RankedEntry struct {
	models.Entry
	Category           string `json:"category"`
	CategoryRank       int    `json:"category_rank"`
	OverallRank        int    `json:"overall_rank"`
	CategoryTotalScore int    `json:"category_total_score"`
	OverallTotalScore  int    `json:"overall_total_score"`
	WorkoutsCompleted  int    `json:"workouts_completed"`
}

// Leaderboard is the result of ranking a competition
type Leaderboard struct {
	Entries         []RankedEntry `json:"entries"` // ordered by overall standing
	Scopes          []string      `json:"scopes"`
	WorkoutRankings Table         `json:"workout_rankings"`
	// CategoryOrder lists entry IDs of each category scope in standing order
	CategoryOrder map[string][]int `json:"-"`
}

// CategoryName returns the scope name for a ticket type name.
// Names differing only in case share a scope.
func CategoryName(ticketTypeName string) string {
	name := strings.TrimSpace(ticketTypeName)
	if name == "" {
		return Uncategorized
	}
	if IsReservedName(name) {
		return ReservedCategory
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + strings.ToLower(name[size:])
}

// IsReservedName reports whether a ticket type name collides with ScopeAll
func IsReservedName(ticketTypeName string) bool {
	return strings.EqualFold(strings.TrimSpace(ticketTypeName), ScopeAll)
}

// Build ranks entries over workouts within every category and overall.
// Volunteers are skipped. The inputs are not modified.
func Build(entries []models.Entry, workouts []models.Workout) Leaderboard {
	competitors := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsVolunteer {
			continue
		}
		e.Scores = slices.Clone(e.Scores)
		e.TeamMembers = slices.Clone(e.TeamMembers)
		competitors = append(competitors, e)
	}

	scopes := []string{ScopeAll}
	byCategory := make(map[string][]models.Entry)
	for _, e := range competitors {
		cat := CategoryName(e.TicketTypeName)
		if _, seen := byCategory[cat]; !seen {
			scopes = append(scopes, cat)
		}
		byCategory[cat] = append(byCategory[cat], e)
	}
	members := func(scope string) []models.Entry {
		if scope == ScopeAll {
			return competitors
		}
		return byCategory[scope]
	}

	table := make(Table, len(scopes))
	for _, scope := range scopes {
		ranks := make(WorkoutRanks, len(workouts))
		for _, w := range workouts {
			ranks[w.ID] = RankWorkout(w, members(scope))
		}
		table[scope] = ranks
	}

	type placement struct {
		agg  Aggregate
		rank int
	}
	category := make(map[int]placement, len(competitors))
	order := make(map[string][]int, len(scopes)-1)
	for _, scope := range scopes[1:] {
		for _, s := range standings(workouts, members(scope), table[scope]) {
			category[s.entry.ID] = placement{agg: s.agg, rank: s.rank}
			order[scope] = append(order[scope], s.entry.ID)
		}
	}

	overall := standings(workouts, competitors, table[ScopeAll])
	ranked := make([]RankedEntry, len(overall))
	for i, s := range overall {
		c := category[s.entry.ID]
		ranked[i] = RankedEntry{
			Entry:              s.entry,
			Category:           CategoryName(s.entry.TicketTypeName),
			CategoryRank:       c.rank,
			OverallRank:        s.rank,
			CategoryTotalScore: c.agg.TotalScore,
			OverallTotalScore:  s.agg.TotalScore,
			WorkoutsCompleted:  s.agg.WorkoutsCompleted,
		}
	}

	return Leaderboard{
		Entries:         ranked,
		Scopes:          scopes,
		WorkoutRankings: table,
		CategoryOrder:   order,
	}
}

type standing struct {
	entry models.Entry
	agg   Aggregate
	rank  int
}

// standings orders entries by total score (ascending) then workouts completed
// (descending) and assigns competition ranks. Remaining ties keep input order.
func standings(workouts []models.Workout, entries []models.Entry, rankings WorkoutRanks) []standing {
	out := make([]standing, len(entries))
	for i, e := range entries {
		out[i] = standing{entry: e, agg: AggregateEntry(workouts, e, rankings)}
	}

	slices.SortStableFunc(out, func(a, b standing) int {
		return compareAggregates(a.agg, b.agg)
	})

	places := competitionRanks(len(out), func(i int) bool {
		return compareAggregates(out[i-1].agg, out[i].agg) == 0
	})
	for i := range out {
		out[i].rank = places[i]
	}
	return out
}

func compareAggregates(a, b Aggregate) int {
	if a.TotalScore != b.TotalScore {
		return a.TotalScore - b.TotalScore
	}
	return b.WorkoutsCompleted - a.WorkoutsCompleted
}

// Standings returns the entries of a scope in standing order.
// Category ties keep the order the entries were passed to Build.
func (lb Leaderboard) Standings(scope string) []RankedEntry {
	if scope == ScopeAll {
		return slices.Clone(lb.Entries)
	}
	byID := make(map[int]RankedEntry, len(lb.Entries))
	for _, e := range lb.Entries {
		byID[e.ID] = e
	}
	ids := lb.CategoryOrder[scope]
	out := make([]RankedEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out
}

// HasScope reports whether scope is one of the leaderboard's scopes
func (lb Leaderboard) HasScope(scope string) bool {
	return slices.Contains(lb.Scopes, scope)
}

// WorkoutRank looks up an entry's rank for one workout in one scope
func (lb Leaderboard) WorkoutRank(scope string, workoutID, entryID int) (int, bool) {
	return findRank(lb.WorkoutRankings[scope][workoutID], entryID)
}
