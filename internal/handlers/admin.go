package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/fitlo/fitlo/internal/models"
)

// ==================== Competitions ====================

func (h *Handlers) handleGetCompetitions(w http.ResponseWriter, r *http.Request) {
	list, err := h.Competition.ListCompetitions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, list)
}

func (h *Handlers) handleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	var req CompetitionCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	c, err := h.Competition.CreateCompetition(r.Context(), req.Name, req.HeatLimitPolicy)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, c)
}

func (h *Handlers) handleGetCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	c, err := h.Competition.GetCompetition(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, c)
}

func (h *Handlers) handleSetHeatLimitPolicy(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req HeatLimitPolicyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Competition.SetHeatLimitPolicy(r.Context(), id, req.Policy); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Heat limit policy updated")
}

// competitionID parses the {id} parameter and checks the competition exists,
// so list endpoints answer 404 rather than an empty list
func (h *Handlers) competitionID(r *http.Request) (int, error) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		return 0, err
	}
	if _, err := h.Competition.GetCompetition(r.Context(), id); err != nil {
		return 0, err
	}
	return id, nil
}

// ==================== Ticket Types ====================

func (h *Handlers) handleGetTicketTypes(w http.ResponseWriter, r *http.Request) {
	id, err := h.competitionID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	list, err := h.Competition.ListTicketTypes(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, list)
}

func (h *Handlers) handleCreateTicketType(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req TicketTypeCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	newID, err := h.Competition.CreateTicketType(r.Context(), models.TicketType{
		CompetitionID:     id,
		Name:              req.Name,
		MaxEntriesPerHeat: req.MaxEntriesPerHeat,
		IsVolunteer:       req.IsVolunteer,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: newID})
}

// ==================== Workouts ====================

func (h *Handlers) handleGetWorkouts(w http.ResponseWriter, r *http.Request) {
	id, err := h.competitionID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	list, err := h.Competition.ListWorkouts(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, list)
}

func (h *Handlers) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req WorkoutCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	newID, err := h.Competition.CreateWorkout(r.Context(), models.Workout{
		CompetitionID:     id,
		Name:              req.Name,
		Description:       req.Description,
		UnitOfMeasurement: req.UnitOfMeasurement,
		ScoreType:         req.ScoreType,
		DisplayOrder:      req.DisplayOrder,
		Visible:           req.Visible,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: newID})
}

func (h *Handlers) handleSetWorkoutVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req VisibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Visible == nil {
		respondError(w, BadRequest("visible is required"))
		return
	}

	if err := h.Competition.SetWorkoutVisibility(r.Context(), id, *req.Visible); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, map[string]bool{"visible": *req.Visible})
}

// ==================== Entries ====================

func (h *Handlers) handleGetEntries(w http.ResponseWriter, r *http.Request) {
	id, err := h.competitionID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	list, err := h.Entry.ListEntries(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, list)
}

func (h *Handlers) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req EntryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	newID, err := h.Entry.RegisterEntry(r.Context(), models.Entry{
		CompetitionID: id,
		Name:          req.Name,
		TicketTypeID:  req.TicketTypeID,
		TeamMembers:   req.TeamMembers,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: newID})
}

func (h *Handlers) handleSeedEntries(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req SeedRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.Entry.SeedMockEntries(r.Context(), id, req.Count, req.WithScores)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, SeedResponse{Created: created})
}

func (h *Handlers) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	e, err := h.Entry.GetEntry(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, e)
}

func (h *Handlers) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Entry.DeleteEntry(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Scores ====================

func (h *Handlers) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	entryID, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	workoutID, err := parseIntParam(r, "workoutID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req ScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Score.SubmitScore(r.Context(), entryID, workoutID, req.Value, req.Completed); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Score recorded")
}

func (h *Handlers) handleClearScore(w http.ResponseWriter, r *http.Request) {
	entryID, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	workoutID, err := parseIntParam(r, "workoutID")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Score.ClearScore(r.Context(), entryID, workoutID); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Heats ====================

func (h *Handlers) handleGetHeats(w http.ResponseWriter, r *http.Request) {
	id, err := h.competitionID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	list, err := h.Heat.ListHeats(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, list)
}

func (h *Handlers) handleCreateHeat(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req HeatCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	newID, err := h.Heat.CreateHeat(r.Context(), models.Heat{
		CompetitionID: id,
		WorkoutID:     req.WorkoutID,
		Name:          req.Name,
		StartsAt:      req.StartsAt,
		Lanes:         req.Lanes,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: newID})
}

func (h *Handlers) handleAssignEntry(w http.ResponseWriter, r *http.Request) {
	heatID, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req AssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	lane, err := h.Heat.AssignEntry(r.Context(), heatID, req.EntryID, req.Lane)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, AssignmentResponse{HeatID: heatID, EntryID: req.EntryID, Lane: lane})
}

func (h *Handlers) handleRemoveAssignment(w http.ResponseWriter, r *http.Request) {
	heatID, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	entryID, err := parseIntParam(r, "entryID")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Heat.RemoveEntry(r.Context(), heatID, entryID); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Leaderboard ====================

// handleAdminLeaderboard ranks every workout, hidden ones included
func (h *Handlers) handleAdminLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	st, err := h.Leaderboard.AdminLeaderboard(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	resp, err := newLeaderboardResponse(st, r.URL.Query().Get("scope"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, resp)
}

func (h *Handlers) handleExportLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	// Buffer so a failed export can still be reported as JSON
	var buf bytes.Buffer
	if err := h.Leaderboard.ExportXLSX(r.Context(), id, &buf); err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="leaderboard-%d.xlsx"`, id))
	w.Write(buf.Bytes())
}

func (h *Handlers) handleGetQRImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.Competition.GenerateQRImage(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
