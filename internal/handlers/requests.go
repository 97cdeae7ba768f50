package handlers

import "github.com/fitlo/fitlo/internal/models"

// LoginRequest is the admin login body
type LoginRequest struct {
	Password string `json:"password"`
}

// CompetitionCreateRequest represents a request to create a competition
type CompetitionCreateRequest struct {
	Name            string                 `json:"name"`
	HeatLimitPolicy models.HeatLimitPolicy `json:"heat_limit_policy"`
}

// HeatLimitPolicyRequest changes a competition's heat capacity policy
type HeatLimitPolicyRequest struct {
	Policy models.HeatLimitPolicy `json:"policy"`
}

// TicketTypeCreateRequest represents a request to create a ticket type
type TicketTypeCreateRequest struct {
	Name              string `json:"name"`
	MaxEntriesPerHeat int    `json:"max_entries_per_heat"`
	IsVolunteer       bool   `json:"is_volunteer"`
}

// WorkoutCreateRequest represents a request to create a workout
type WorkoutCreateRequest struct {
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	UnitOfMeasurement models.Unit      `json:"unit_of_measurement"`
	ScoreType         models.ScoreType `json:"score_type"`
	DisplayOrder      int              `json:"display_order"`
	Visible           bool             `json:"visible"`
}

// VisibilityRequest shows or hides a workout
type VisibilityRequest struct {
	Visible *bool `json:"visible"`
}

// EntryCreateRequest represents a request to register an entry
type EntryCreateRequest struct {
	Name         string   `json:"name"`
	TicketTypeID int      `json:"ticket_type_id"`
	TeamMembers  []string `json:"team_members"`
}

// SeedRequest asks for mock entries to be generated
type SeedRequest struct {
	Count      int  `json:"count"`
	WithScores bool `json:"with_scores"`
}

// ScoreRequest records an entry's result for a workout
type ScoreRequest struct {
	Value     string `json:"value"`
	Completed bool   `json:"completed"`
}

// HeatCreateRequest represents a request to create a heat
type HeatCreateRequest struct {
	WorkoutID int    `json:"workout_id"`
	Name      string `json:"name"`
	StartsAt  string `json:"starts_at"`
	Lanes     int    `json:"lanes"`
}

// AssignmentRequest places an entry into a heat. Lane 0 picks the lowest free lane.
type AssignmentRequest struct {
	EntryID int `json:"entry_id"`
	Lane    int `json:"lane"`
}
