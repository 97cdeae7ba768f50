package heats

import (
	"testing"

	"github.com/fitlo/fitlo/internal/models"
)

func assignments(ticketTypes ...int) []models.HeatAssignment {
	out := make([]models.HeatAssignment, len(ticketTypes))
	for i, tt := range ticketTypes {
		out[i] = models.HeatAssignment{HeatID: 1, EntryID: i + 1, TicketTypeID: tt, Lane: i + 1}
	}
	return out
}

func TestIsFull(t *testing.T) {
	heat := models.Heat{ID: 1, Lanes: 4}
	rx := models.TicketType{ID: 10, Name: "Rx", MaxEntriesPerHeat: 2}
	open := models.TicketType{ID: 11, Name: "Open"}

	tests := []struct {
		name        string
		assignments []models.HeatAssignment
		policy      models.HeatLimitPolicy
		ticketType  models.TicketType
		want        bool
	}{
		{"empty heat", nil, models.HeatLimitLanes, rx, false},
		{"lanes left", assignments(10, 10, 10), models.HeatLimitLanes, rx, false},
		{"lanes exhausted", assignments(10, 11, 11, 11), models.HeatLimitLanes, open, true},
		{"ticket type ignored under lane policy", assignments(10, 10), models.HeatLimitLanes, rx, false},
		{"ticket type cap reached", assignments(10, 10), models.HeatLimitTicketType, rx, true},
		{"other ticket types do not count", assignments(11, 11, 10), models.HeatLimitTicketType, rx, false},
		{"unlimited ticket type", assignments(11, 11, 11), models.HeatLimitTicketType, open, false},
		{"lanes still bound ticket policy", assignments(11, 11, 11, 11), models.HeatLimitTicketType, rx, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFull(heat, tt.assignments, tt.policy, tt.ticketType); got != tt.want {
				t.Errorf("IsFull() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextLane(t *testing.T) {
	heat := models.Heat{ID: 1, Lanes: 3}

	lane, ok := NextLane(heat, nil)
	if !ok || lane != 1 {
		t.Errorf("NextLane(empty) = %d, %v; want 1, true", lane, ok)
	}

	gap := []models.HeatAssignment{{EntryID: 1, Lane: 1}, {EntryID: 2, Lane: 3}}
	lane, ok = NextLane(heat, gap)
	if !ok || lane != 2 {
		t.Errorf("NextLane(gap) = %d, %v; want 2, true", lane, ok)
	}

	lane, ok = NextLane(heat, assignments(1, 1, 1))
	if ok {
		t.Errorf("NextLane(full) = %d, true; want false", lane)
	}
}

func TestContains(t *testing.T) {
	a := assignments(1, 1)
	if !Contains(a, 2) {
		t.Error("expected entry 2 to be in heat")
	}
	if Contains(a, 3) {
		t.Error("entry 3 should not be in heat")
	}
}
