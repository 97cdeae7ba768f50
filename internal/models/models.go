package models

import "strings"

// Unit is the unit of measurement a workout is scored in
type Unit string

const (
	UnitReps      Unit = "REPS"
	UnitSeconds   Unit = "SECONDS"
	UnitMinutes   Unit = "MINUTES"
	UnitKilograms Unit = "KILOGRAMS"
	UnitPounds    Unit = "POUNDS"
	UnitMeters    Unit = "METERS"
	UnitCalories  Unit = "CALORIES"
	UnitPoints    Unit = "POINTS"
)

// Valid reports whether u is a known unit
func (u Unit) Valid() bool {
	switch u {
	case UnitReps, UnitSeconds, UnitMinutes, UnitKilograms, UnitPounds, UnitMeters, UnitCalories, UnitPoints:
		return true
	}
	return false
}

// IsTime reports whether values in this unit may be written as clock time
func (u Unit) IsTime() bool {
	return u == UnitSeconds || u == UnitMinutes
}

// ScoreType encodes how scores for a workout are compared
type ScoreType string

const (
	ScoreRepsMoreIsBetter     ScoreType = "REPS_MORE_IS_BETTER"
	ScoreRepsLessIsBetter     ScoreType = "REPS_LESS_IS_BETTER"
	ScoreWeightMoreIsBetter   ScoreType = "WEIGHT_MORE_IS_BETTER"
	ScoreWeightLessIsBetter   ScoreType = "WEIGHT_LESS_IS_BETTER"
	ScoreTimeMoreIsBetter     ScoreType = "TIME_MORE_IS_BETTER"
	ScoreTimeLessIsBetter     ScoreType = "TIME_LESS_IS_BETTER"
	ScorePointsMoreIsBetter   ScoreType = "POINTS_MORE_IS_BETTER"
	ScoreRepsOrTimeCompletion ScoreType = "REPS_OR_TIME_COMPLETION_BASED"
)

// Valid reports whether s is a known score type
func (s ScoreType) Valid() bool {
	switch s {
	case ScoreRepsMoreIsBetter, ScoreRepsLessIsBetter,
		ScoreWeightMoreIsBetter, ScoreWeightLessIsBetter,
		ScoreTimeMoreIsBetter, ScoreTimeLessIsBetter,
		ScorePointsMoreIsBetter, ScoreRepsOrTimeCompletion:
		return true
	}
	return false
}

// CompletionBased reports whether finishing the workout outranks any unfinished attempt
func (s ScoreType) CompletionBased() bool {
	return s == ScoreRepsOrTimeCompletion
}

// MoreIsBetter reports whether a higher value wins
func (s ScoreType) MoreIsBetter() bool {
	return strings.HasSuffix(string(s), "_MORE_IS_BETTER")
}

// HeatLimitPolicy selects how heat capacity is enforced
type HeatLimitPolicy string

const (
	// HeatLimitLanes caps a heat at its lane count
	HeatLimitLanes HeatLimitPolicy = "LANES"
	// HeatLimitTicketType additionally caps entries per ticket type
	HeatLimitTicketType HeatLimitPolicy = "TICKET_TYPE"
)

// Valid reports whether p is a known policy
func (p HeatLimitPolicy) Valid() bool {
	return p == HeatLimitLanes || p == HeatLimitTicketType
}

// Competition is a single fitness event
type Competition struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	HeatLimitPolicy HeatLimitPolicy `json:"heat_limit_policy"`
	CreatedAt       string          `json:"created_at,omitempty"`
}

// TicketType is a category entries compete in
type TicketType struct {
	ID                int    `json:"id"`
	CompetitionID     int    `json:"competition_id"`
	Name              string `json:"name"`
	MaxEntriesPerHeat int    `json:"max_entries_per_heat"` // 0 means unlimited
	IsVolunteer       bool   `json:"is_volunteer"`
}

// Workout is a scored event within a competition
type Workout struct {
	ID                int       `json:"id" yaml:"id"`
	CompetitionID     int       `json:"competition_id" yaml:"competition_id"`
	Name              string    `json:"name" yaml:"name"`
	Description       string    `json:"description,omitempty" yaml:"description"`
	UnitOfMeasurement Unit      `json:"unit_of_measurement" yaml:"unit_of_measurement"`
	ScoreType         ScoreType `json:"score_type" yaml:"score_type"`
	DisplayOrder      int       `json:"display_order" yaml:"display_order"`
	Visible           bool      `json:"visible" yaml:"visible"`
}

// Score is one entry's result for one workout
type Score struct {
	WorkoutID   int       `json:"workout_id" yaml:"workout_id"`
	RepsOrTime  string    `json:"reps_or_time" yaml:"reps_or_time"`
	ScoreType   ScoreType `json:"score_type" yaml:"score_type"`
	IsCompleted bool      `json:"is_completed" yaml:"is_completed"`
}

// Entry is one athlete or team competing under a ticket type
type Entry struct {
	ID             int      `json:"id" yaml:"id"`
	CompetitionID  int      `json:"competition_id" yaml:"competition_id"`
	Name           string   `json:"name" yaml:"name"`
	TicketTypeID   int      `json:"ticket_type_id" yaml:"ticket_type_id"`
	TicketTypeName string   `json:"ticket_type_name" yaml:"ticket_type_name"`
	IsVolunteer    bool     `json:"is_volunteer" yaml:"is_volunteer"`
	TeamMembers    []string `json:"team_members,omitempty" yaml:"team_members"`
	Scores         []Score  `json:"scores" yaml:"scores"`
}

// ScoreFor returns the first non-empty score the entry recorded for a workout
func (e Entry) ScoreFor(workoutID int) (Score, bool) {
	for _, s := range e.Scores {
		if s.WorkoutID == workoutID && s.RepsOrTime != "" {
			return s, true
		}
	}
	return Score{}, false
}

// Heat is a time slot for a workout with a fixed number of lanes
type Heat struct {
	ID            int    `json:"id"`
	CompetitionID int    `json:"competition_id"`
	WorkoutID     int    `json:"workout_id"`
	Name          string `json:"name"`
	StartsAt      string `json:"starts_at,omitempty"`
	Lanes         int    `json:"lanes"`
}

// HeatAssignment places an entry in a lane of a heat
type HeatAssignment struct {
	HeatID       int    `json:"heat_id"`
	EntryID      int    `json:"entry_id"`
	EntryName    string `json:"entry_name,omitempty"`
	TicketTypeID int    `json:"ticket_type_id"`
	Lane         int    `json:"lane"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
