package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/fitlo/fitlo/internal/models"
	"github.com/fitlo/fitlo/internal/ranking"
)

// snapshot is a competition exported to a file: workouts plus entries with scores.
// YAML is a superset of JSON, so either format loads.
type snapshot struct {
	Workouts []models.Workout `yaml:"workouts"`
	Entries  []models.Entry   `yaml:"entries"`
}

// loadSnapshot parses and checks a snapshot. Entries without an id are numbered
// in file order; workouts must carry ids since scores refer to them.
func loadSnapshot(data []byte) (*snapshot, error) {
	var s snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	workouts := make(map[int]bool, len(s.Workouts))
	for i, w := range s.Workouts {
		if w.ID == 0 {
			return nil, fmt.Errorf("workout %d (%q) has no id", i+1, w.Name)
		}
		if workouts[w.ID] {
			return nil, fmt.Errorf("duplicate workout id %d", w.ID)
		}
		if !w.UnitOfMeasurement.Valid() {
			return nil, fmt.Errorf("workout %d: unknown unit %q", w.ID, w.UnitOfMeasurement)
		}
		if !w.ScoreType.Valid() {
			return nil, fmt.Errorf("workout %d: unknown score type %q", w.ID, w.ScoreType)
		}
		workouts[w.ID] = true
	}

	next := 0
	for _, e := range s.Entries {
		next = max(next, e.ID)
	}
	entries := make(map[int]bool, len(s.Entries))
	for i := range s.Entries {
		e := &s.Entries[i]
		if e.ID == 0 {
			next++
			e.ID = next
		}
		if entries[e.ID] {
			return nil, fmt.Errorf("duplicate entry id %d", e.ID)
		}
		if ranking.IsReservedName(e.TicketTypeName) {
			return nil, fmt.Errorf("entry %q: ticket type cannot be named %q", e.Name, ranking.ScopeAll)
		}
		entries[e.ID] = true
		for _, sc := range e.Scores {
			if !workouts[sc.WorkoutID] {
				return nil, fmt.Errorf("entry %q scores unknown workout %d", e.Name, sc.WorkoutID)
			}
		}
	}
	return &s, nil
}

// rankSnapshot ranks a snapshot and writes one scope's standings as a table
func rankSnapshot(w io.Writer, data []byte, scope string) error {
	s, err := loadSnapshot(data)
	if err != nil {
		return err
	}

	lb := ranking.Build(s.Entries, s.Workouts)
	if scope == "" {
		scope = ranking.ScopeAll
	}
	if !lb.HasScope(scope) {
		return fmt.Errorf("scope %q not found (have %s)", scope, strings.Join(lb.Scopes, ", "))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"RANK", "NAME", "CATEGORY", "TOTAL", "DONE"}
	for _, wo := range s.Workouts {
		header = append(header, strings.ToUpper(wo.Name))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, e := range lb.Standings(scope) {
		rank, total := e.CategoryRank, e.CategoryTotalScore
		if scope == ranking.ScopeAll {
			rank, total = e.OverallRank, e.OverallTotalScore
		}
		row := []string{
			fmt.Sprint(rank),
			e.Name,
			e.Category,
			fmt.Sprint(total),
			fmt.Sprint(e.WorkoutsCompleted),
		}
		for _, wo := range s.Workouts {
			cell := "-"
			if r, ok := lb.WorkoutRank(scope, wo.ID, e.ID); ok {
				cell = fmt.Sprint(r)
				if sc, ok := e.ScoreFor(wo.ID); ok {
					cell = fmt.Sprintf("%d (%s)", r, sc.RepsOrTime)
				}
			}
			row = append(row, cell)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
