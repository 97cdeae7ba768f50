package services

import (
	stderrors "errors"

	"github.com/fitlo/fitlo/internal/errors"
	"github.com/fitlo/fitlo/internal/repository"
)

// Service errors
var (
	ErrNameRequired       = errors.Validation("name is required")
	ErrReservedName       = errors.Validation(`ticket type cannot be named "All"`)
	ErrInvalidSeedCount   = errors.Validation("count must be between 1 and 200")
	ErrInvalidLanes       = errors.Validation("lanes must be between 1 and 64")
	ErrScoreRequired      = errors.Validation("score value is required")
	ErrInvalidScore       = errors.Validation("score value cannot be parsed for this workout")
	ErrVolunteerInHeat    = errors.Validation("volunteers cannot be assigned to heats")
	ErrVolunteerScore     = errors.Validation("volunteers do not record scores")
	ErrWrongCompetition   = errors.Validation("records belong to different competitions")
	ErrAlreadyAssigned    = errors.Conflict("entry is already assigned to this heat")
	ErrLaneTaken          = errors.Conflict("lane is already taken")
	ErrHeatFull           = errors.Capacityf("heat is full")
	ErrTicketTypeHeatFull = errors.Capacityf("heat has reached the limit for this ticket type")
)

// notFound turns repository.ErrNotFound into a NotFound error naming the record.
// Other errors pass through unchanged.
func notFound(err error, what string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFoundf("%s not found", what)
	}
	if stderrors.Is(err, repository.ErrDuplicate) {
		return errors.Wrap(err, errors.ErrConflict, what+" already exists")
	}
	return err
}
