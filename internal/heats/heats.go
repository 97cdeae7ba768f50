// Package heats decides whether an entry still fits into a heat and which lane it gets.
package heats

import "github.com/fitlo/fitlo/internal/models"

// IsFull reports whether a heat can take no more entries of the given ticket type.
// Under HeatLimitLanes only the lane count matters. Under HeatLimitTicketType the
// ticket type's MaxEntriesPerHeat also caps how many of its entries share a heat.
func IsFull(heat models.Heat, assignments []models.HeatAssignment, policy models.HeatLimitPolicy, ticketType models.TicketType) bool {
	if len(assignments) >= heat.Lanes {
		return true
	}
	if policy != models.HeatLimitTicketType || ticketType.MaxEntriesPerHeat <= 0 {
		return false
	}

	sameType := 0
	for _, a := range assignments {
		if a.TicketTypeID == ticketType.ID {
			sameType++
		}
	}
	return sameType >= ticketType.MaxEntriesPerHeat
}

// NextLane returns the lowest free lane (1-based)
func NextLane(heat models.Heat, assignments []models.HeatAssignment) (int, bool) {
	taken := make(map[int]bool, len(assignments))
	for _, a := range assignments {
		taken[a.Lane] = true
	}
	for lane := 1; lane <= heat.Lanes; lane++ {
		if !taken[lane] {
			return lane, true
		}
	}
	return 0, false
}

// Contains reports whether an entry is already in the heat
func Contains(assignments []models.HeatAssignment, entryID int) bool {
	for _, a := range assignments {
		if a.EntryID == entryID {
			return true
		}
	}
	return false
}
