package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fitlo/fitlo/internal/errors"
	"github.com/fitlo/fitlo/internal/logger"
	"github.com/fitlo/fitlo/internal/metrics"
	"github.com/fitlo/fitlo/internal/models"
	"github.com/fitlo/fitlo/internal/ranking"
	"github.com/fitlo/fitlo/internal/repository"
)

// LeaderboardServiceRepository defines the repository methods needed by LeaderboardService
type LeaderboardServiceRepository interface {
	repository.CompetitionRepository
	repository.WorkoutRepository
	repository.EntryRepository
}

// Standings is a ranked competition together with the workouts it was ranked on
type Standings struct {
	Competition models.Competition `json:"competition"`
	Workouts    []models.Workout   `json:"workouts"`
	ranking.Leaderboard
}

// Scope returns the entries of one scope in standing order
func (s *Standings) Scope(scope string) ([]ranking.RankedEntry, error) {
	if scope == "" {
		scope = ranking.ScopeAll
	}
	if !s.HasScope(scope) {
		return nil, errors.NotFoundf("scope %q not found", scope)
	}
	return s.Standings(scope), nil
}

// LeaderboardService loads competition data and ranks it
type LeaderboardService struct {
	log     logger.Logger
	repo    LeaderboardServiceRepository
	metrics metrics.Recorder
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(log logger.Logger, repo LeaderboardServiceRepository, rec metrics.Recorder) *LeaderboardService {
	return &LeaderboardService{log: log, repo: repo, metrics: rec}
}

// PublicLeaderboard ranks a competition on its visible workouts only.
// Scores for hidden workouts are stripped from the returned entries.
func (s *LeaderboardService) PublicLeaderboard(ctx context.Context, slug string) (*Standings, error) {
	c, err := s.repo.GetCompetitionBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "competition")
	}
	return s.build(ctx, c, false)
}

// AdminLeaderboard ranks a competition on every workout, hidden ones included
func (s *LeaderboardService) AdminLeaderboard(ctx context.Context, competitionID int) (*Standings, error) {
	c, err := s.repo.GetCompetition(ctx, competitionID)
	if err != nil {
		return nil, notFound(err, "competition")
	}
	return s.build(ctx, c, true)
}

func (s *LeaderboardService) build(ctx context.Context, c *models.Competition, includeHidden bool) (*Standings, error) {
	workouts, err := s.repo.ListWorkouts(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	if !includeHidden {
		workouts = visibleOnly(workouts)
		entries = withScoresFor(entries, workouts)
	}

	start := time.Now()
	lb := ranking.Build(entries, workouts)
	elapsed := time.Since(start)

	s.metrics.ObserveLeaderboardBuild(c.Slug, len(lb.Entries), elapsed)
	s.log.Debug("Leaderboard built", "competition", c.Slug, "entries", len(lb.Entries),
		"workouts", len(workouts), "scopes", len(lb.Scopes), "duration", elapsed)

	return &Standings{Competition: *c, Workouts: workouts, Leaderboard: lb}, nil
}

func visibleOnly(workouts []models.Workout) []models.Workout {
	out := make([]models.Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.Visible {
			out = append(out, w)
		}
	}
	return out
}

// withScoresFor drops scores that do not belong to one of the given workouts
func withScoresFor(entries []models.Entry, workouts []models.Workout) []models.Entry {
	keep := make(map[int]bool, len(workouts))
	for _, w := range workouts {
		keep[w.ID] = true
	}

	out := make([]models.Entry, len(entries))
	for i, e := range entries {
		var scores []models.Score
		for _, sc := range e.Scores {
			if keep[sc.WorkoutID] {
				scores = append(scores, sc)
			}
		}
		e.Scores = scores
		out[i] = e
	}
	return out
}

// ExportXLSX writes the full leaderboard as a workbook with one sheet per scope
func (s *LeaderboardService) ExportXLSX(ctx context.Context, competitionID int, w io.Writer) error {
	st, err := s.AdminLeaderboard(ctx, competitionID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	used := map[string]bool{}
	for i, scope := range st.Scopes {
		sheet := uniqueSheetName(scope, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}

		for row, values := range scopeRows(st, scope) {
			cell, err := excelize.CoordinatesToCellName(1, row+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return err
			}
		}
	}
	f.SetActiveSheet(0)

	s.log.Info("Leaderboard exported", "competition", st.Competition.Slug, "sheets", len(st.Scopes))
	return f.Write(w)
}

// scopeRows lays out one scope as a header row plus one row per entry
func scopeRows(st *Standings, scope string) [][]any {
	header := []any{"Rank", "Name", "Category", "Total", "Workouts Completed"}
	for _, w := range st.Workouts {
		header = append(header, w.Name, w.Name+" Rank")
	}
	rows := [][]any{header}

	for _, e := range st.Standings(scope) {
		rank, total := e.OverallRank, e.OverallTotalScore
		if scope != ranking.ScopeAll {
			rank, total = e.CategoryRank, e.CategoryTotalScore
		}

		row := []any{rank, e.Name, e.Category, total, e.WorkoutsCompleted}
		for _, w := range st.Workouts {
			var value, place any = "", ""
			if sc, ok := e.ScoreFor(w.ID); ok {
				value = sc.RepsOrTime
			}
			if r, ok := st.WorkoutRank(scope, w.ID, e.ID); ok {
				place = r
			}
			row = append(row, value, place)
		}
		rows = append(rows, row)
	}
	return rows
}

// uniqueSheetName makes a scope name acceptable as a worksheet name
func uniqueSheetName(scope string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, scope)
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}

	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		runes := []rune(name)
		if len(runes)+len(suffix) > 31 {
			runes = runes[:31-len(suffix)]
		}
		candidate = string(runes) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
