package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fitlo/fitlo/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// SQLite works best with a single connection; this also serializes heat assignment
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// NewWithDB wraps an existing connection without migrating (used with sqlmock)
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS competitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			slug TEXT UNIQUE NOT NULL,
			heat_limit_policy TEXT NOT NULL DEFAULT 'LANES',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS ticket_types (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			competition_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			max_entries_per_heat INTEGER NOT NULL DEFAULT 0,
			is_volunteer BOOLEAN DEFAULT 0,
			FOREIGN KEY (competition_id) REFERENCES competitions(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS workouts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			competition_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			unit_of_measurement TEXT NOT NULL,
			score_type TEXT NOT NULL,
			display_order INTEGER NOT NULL DEFAULT 0,
			visible BOOLEAN DEFAULT 1,
			FOREIGN KEY (competition_id) REFERENCES competitions(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			competition_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			ticket_type_id INTEGER,
			team_members TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (competition_id) REFERENCES competitions(id) ON DELETE CASCADE,
			FOREIGN KEY (ticket_type_id) REFERENCES ticket_types(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			entry_id INTEGER NOT NULL,
			workout_id INTEGER NOT NULL,
			reps_or_time TEXT NOT NULL,
			is_completed BOOLEAN DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (entry_id, workout_id),
			FOREIGN KEY (entry_id) REFERENCES entries(id) ON DELETE CASCADE,
			FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS heats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			competition_id INTEGER NOT NULL,
			workout_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			starts_at TEXT,
			lanes INTEGER NOT NULL,
			FOREIGN KEY (competition_id) REFERENCES competitions(id) ON DELETE CASCADE,
			FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS heat_assignments (
			heat_id INTEGER NOT NULL,
			entry_id INTEGER NOT NULL,
			lane INTEGER NOT NULL,
			PRIMARY KEY (heat_id, entry_id),
			UNIQUE (heat_id, lane),
			FOREIGN KEY (heat_id) REFERENCES heats(id) ON DELETE CASCADE,
			FOREIGN KEY (entry_id) REFERENCES entries(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_competition ON entries(competition_id)`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_competition ON workouts(competition_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_workout ON scores(workout_id)`,
		`CREATE INDEX IF NOT EXISTS idx_heats_competition ON heats(competition_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// ==================== Competition Methods ====================

// CreateCompetition inserts a competition and returns its id
func (r *Repository) CreateCompetition(ctx context.Context, name, slug string, policy models.HeatLimitPolicy) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO competitions (name, slug, heat_limit_policy) VALUES (?, ?, ?)
	`, name, slug, string(policy))
	if err != nil {
		return 0, translate(err)
	}
	return result.LastInsertId()
}

const competitionColumns = `id, name, slug, heat_limit_policy, created_at`

func scanCompetition(row interface{ Scan(...any) error }) (*models.Competition, error) {
	var c models.Competition
	var policy string
	var createdAt sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &policy, &createdAt); err != nil {
		return nil, err
	}
	c.HeatLimitPolicy = models.HeatLimitPolicy(policy)
	c.CreatedAt = createdAt.String
	return &c, nil
}

// ListCompetitions returns all competitions, newest first
func (r *Repository) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+competitionColumns+` FROM competitions ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitions := []models.Competition{}
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, err
		}
		competitions = append(competitions, *c)
	}
	return competitions, rows.Err()
}

// GetCompetition retrieves a competition by id
func (r *Repository) GetCompetition(ctx context.Context, id int) (*models.Competition, error) {
	c, err := scanCompetition(r.db.QueryRowContext(ctx,
		`SELECT `+competitionColumns+` FROM competitions WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return c, err
}

// GetCompetitionBySlug retrieves a competition by its public slug
func (r *Repository) GetCompetitionBySlug(ctx context.Context, slug string) (*models.Competition, error) {
	c, err := scanCompetition(r.db.QueryRowContext(ctx,
		`SELECT `+competitionColumns+` FROM competitions WHERE slug = ?`, slug))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return c, err
}

// SetHeatLimitPolicy changes how heat capacity is enforced
func (r *Repository) SetHeatLimitPolicy(ctx context.Context, id int, policy models.HeatLimitPolicy) error {
	result, err := r.db.ExecContext(ctx, `UPDATE competitions SET heat_limit_policy = ? WHERE id = ?`, string(policy), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ==================== Ticket Type Methods ====================

// CreateTicketType inserts a ticket type for a competition
func (r *Repository) CreateTicketType(ctx context.Context, tt models.TicketType) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO ticket_types (competition_id, name, max_entries_per_heat, is_volunteer)
		VALUES (?, ?, ?, ?)
	`, tt.CompetitionID, tt.Name, tt.MaxEntriesPerHeat, tt.IsVolunteer)
	if err != nil {
		return 0, translate(err)
	}
	return result.LastInsertId()
}

// ListTicketTypes returns the ticket types of a competition in creation order
func (r *Repository) ListTicketTypes(ctx context.Context, competitionID int) ([]models.TicketType, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, competition_id, name, max_entries_per_heat, is_volunteer
		FROM ticket_types WHERE competition_id = ? ORDER BY id
	`, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []models.TicketType{}
	for rows.Next() {
		var tt models.TicketType
		if err := rows.Scan(&tt.ID, &tt.CompetitionID, &tt.Name, &tt.MaxEntriesPerHeat, &tt.IsVolunteer); err != nil {
			return nil, err
		}
		types = append(types, tt)
	}
	return types, rows.Err()
}

// GetTicketType retrieves a ticket type by id
func (r *Repository) GetTicketType(ctx context.Context, id int) (*models.TicketType, error) {
	var tt models.TicketType
	err := r.db.QueryRowContext(ctx, `
		SELECT id, competition_id, name, max_entries_per_heat, is_volunteer
		FROM ticket_types WHERE id = ?
	`, id).Scan(&tt.ID, &tt.CompetitionID, &tt.Name, &tt.MaxEntriesPerHeat, &tt.IsVolunteer)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// ==================== Workout Methods ====================

// CreateWorkout inserts a workout
func (r *Repository) CreateWorkout(ctx context.Context, w models.Workout) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO workouts (competition_id, name, description, unit_of_measurement, score_type, display_order, visible)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.CompetitionID, w.Name, w.Description, string(w.UnitOfMeasurement), string(w.ScoreType), w.DisplayOrder, w.Visible)
	if err != nil {
		return 0, translate(err)
	}
	return result.LastInsertId()
}

const workoutColumns = `id, competition_id, name, description, unit_of_measurement, score_type, display_order, visible`

func scanWorkout(row interface{ Scan(...any) error }) (*models.Workout, error) {
	var w models.Workout
	var description sql.NullString
	var unit, scoreType string
	if err := row.Scan(&w.ID, &w.CompetitionID, &w.Name, &description, &unit, &scoreType, &w.DisplayOrder, &w.Visible); err != nil {
		return nil, err
	}
	w.Description = description.String
	w.UnitOfMeasurement = models.Unit(unit)
	w.ScoreType = models.ScoreType(scoreType)
	return &w, nil
}

// ListWorkouts returns a competition's workouts by display order
func (r *Repository) ListWorkouts(ctx context.Context, competitionID int) ([]models.Workout, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+workoutColumns+` FROM workouts
		WHERE competition_id = ? ORDER BY display_order, id
	`, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := []models.Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

// GetWorkout retrieves a workout by id
func (r *Repository) GetWorkout(ctx context.Context, id int) (*models.Workout, error) {
	w, err := scanWorkout(r.db.QueryRowContext(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return w, err
}

// SetWorkoutVisibility shows or hides a workout on the public leaderboard
func (r *Repository) SetWorkoutVisibility(ctx context.Context, id int, visible bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE workouts SET visible = ? WHERE id = ?`, visible, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ==================== Entry Methods ====================

// CreateEntry inserts an entry; team members are stored as a JSON array
func (r *Repository) CreateEntry(ctx context.Context, e models.Entry) (int64, error) {
	var members []byte
	if len(e.TeamMembers) > 0 {
		var err error
		members, err = json.Marshal(e.TeamMembers)
		if err != nil {
			return 0, err
		}
	}

	var ticketTypeID any
	if e.TicketTypeID != 0 {
		ticketTypeID = e.TicketTypeID
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (competition_id, name, ticket_type_id, team_members) VALUES (?, ?, ?, ?)
	`, e.CompetitionID, e.Name, ticketTypeID, nullableString(members))
	if err != nil {
		return 0, translate(err)
	}
	return result.LastInsertId()
}

const entryQuery = `
	SELECT e.id, e.competition_id, e.name, e.ticket_type_id, e.team_members, tt.name, tt.is_volunteer
	FROM entries e
	LEFT JOIN ticket_types tt ON e.ticket_type_id = tt.id
`

func scanEntry(row interface{ Scan(...any) error }) (*models.Entry, error) {
	var e models.Entry
	var ticketTypeID sql.NullInt64
	var members, ticketTypeName sql.NullString
	var isVolunteer sql.NullBool
	if err := row.Scan(&e.ID, &e.CompetitionID, &e.Name, &ticketTypeID, &members, &ticketTypeName, &isVolunteer); err != nil {
		return nil, err
	}
	e.TicketTypeID = int(ticketTypeID.Int64)
	e.TicketTypeName = ticketTypeName.String
	e.IsVolunteer = isVolunteer.Bool
	if members.Valid && members.String != "" {
		if err := json.Unmarshal([]byte(members.String), &e.TeamMembers); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

// ListEntries returns all entries of a competition with their scores attached
func (r *Repository) ListEntries(ctx context.Context, competitionID int) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, entryQuery+` WHERE e.competition_id = ? ORDER BY e.id`, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Entry{}
	index := map[int]int{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		index[e.ID] = len(entries)
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	scoreRows, err := r.db.QueryContext(ctx, `
		SELECT s.entry_id, s.workout_id, s.reps_or_time, s.is_completed
		FROM scores s
		JOIN entries e ON s.entry_id = e.id
		WHERE e.competition_id = ?
		ORDER BY s.entry_id, s.workout_id
	`, competitionID)
	if err != nil {
		return nil, err
	}
	defer scoreRows.Close()

	for scoreRows.Next() {
		var entryID int
		var s models.Score
		if err := scoreRows.Scan(&entryID, &s.WorkoutID, &s.RepsOrTime, &s.IsCompleted); err != nil {
			return nil, err
		}
		if i, ok := index[entryID]; ok {
			entries[i].Scores = append(entries[i].Scores, s)
		}
	}
	return entries, scoreRows.Err()
}

// GetEntry retrieves a single entry with its scores
func (r *Repository) GetEntry(ctx context.Context, id int) (*models.Entry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, entryQuery+` WHERE e.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT workout_id, reps_or_time, is_completed FROM scores WHERE entry_id = ? ORDER BY workout_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s models.Score
		if err := rows.Scan(&s.WorkoutID, &s.RepsOrTime, &s.IsCompleted); err != nil {
			return nil, err
		}
		e.Scores = append(e.Scores, s)
	}
	return e, rows.Err()
}

// DeleteEntry removes an entry; scores and heat assignments cascade
func (r *Repository) DeleteEntry(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ==================== Score Methods ====================

// UpsertScore records or replaces an entry's score for a workout
func (r *Repository) UpsertScore(ctx context.Context, entryID, workoutID int, value string, completed bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scores (entry_id, workout_id, reps_or_time, is_completed)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(entry_id, workout_id) DO UPDATE SET
			reps_or_time = excluded.reps_or_time,
			is_completed = excluded.is_completed,
			updated_at = CURRENT_TIMESTAMP
	`, entryID, workoutID, value, completed)
	return translate(err)
}

// DeleteScore removes an entry's score for a workout
func (r *Repository) DeleteScore(ctx context.Context, entryID, workoutID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scores WHERE entry_id = ? AND workout_id = ?`, entryID, workoutID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ==================== Heat Methods ====================

// CreateHeat inserts a heat
func (r *Repository) CreateHeat(ctx context.Context, h models.Heat) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO heats (competition_id, workout_id, name, starts_at, lanes) VALUES (?, ?, ?, ?, ?)
	`, h.CompetitionID, h.WorkoutID, h.Name, h.StartsAt, h.Lanes)
	if err != nil {
		return 0, translate(err)
	}
	return result.LastInsertId()
}

const heatColumns = `id, competition_id, workout_id, name, starts_at, lanes`

func scanHeat(row interface{ Scan(...any) error }) (*models.Heat, error) {
	var h models.Heat
	var startsAt sql.NullString
	if err := row.Scan(&h.ID, &h.CompetitionID, &h.WorkoutID, &h.Name, &startsAt, &h.Lanes); err != nil {
		return nil, err
	}
	h.StartsAt = startsAt.String
	return &h, nil
}

// ListHeats returns a competition's heats by start time
func (r *Repository) ListHeats(ctx context.Context, competitionID int) ([]models.Heat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+heatColumns+` FROM heats WHERE competition_id = ? ORDER BY starts_at, id
	`, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	heats := []models.Heat{}
	for rows.Next() {
		h, err := scanHeat(rows)
		if err != nil {
			return nil, err
		}
		heats = append(heats, *h)
	}
	return heats, rows.Err()
}

// GetHeat retrieves a heat by id
func (r *Repository) GetHeat(ctx context.Context, id int) (*models.Heat, error) {
	h, err := scanHeat(r.db.QueryRowContext(ctx, `SELECT `+heatColumns+` FROM heats WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return h, err
}

const assignmentQuery = `
	SELECT ha.heat_id, ha.entry_id, e.name, e.ticket_type_id, ha.lane
	FROM heat_assignments ha
	JOIN entries e ON ha.entry_id = e.id
	WHERE ha.heat_id = ?
	ORDER BY ha.lane
`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listAssignments(ctx context.Context, q querier, heatID int) ([]models.HeatAssignment, error) {
	rows, err := q.QueryContext(ctx, assignmentQuery, heatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []models.HeatAssignment{}
	for rows.Next() {
		var a models.HeatAssignment
		var ticketTypeID sql.NullInt64
		if err := rows.Scan(&a.HeatID, &a.EntryID, &a.EntryName, &ticketTypeID, &a.Lane); err != nil {
			return nil, err
		}
		a.TicketTypeID = int(ticketTypeID.Int64)
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// ListHeatAssignments returns the entries assigned to a heat by lane
func (r *Repository) ListHeatAssignments(ctx context.Context, heatID int) ([]models.HeatAssignment, error) {
	return listAssignments(ctx, r.db, heatID)
}

// AssignHeatLane reads the heat's assignments, lets pick choose a lane and
// inserts the assignment, all inside one transaction.
func (r *Repository) AssignHeatLane(ctx context.Context, heatID, entryID int, pick LanePicker) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	assignments, err := listAssignments(ctx, tx, heatID)
	if err != nil {
		return 0, err
	}

	lane, err := pick(assignments)
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO heat_assignments (heat_id, entry_id, lane) VALUES (?, ?, ?)
	`, heatID, entryID, lane); err != nil {
		return 0, translate(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return lane, nil
}

// DeleteHeatAssignment removes an entry from a heat
func (r *Repository) DeleteHeatAssignment(ctx context.Context, heatID, entryID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM heat_assignments WHERE heat_id = ? AND entry_id = ?`, heatID, entryID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ==================== Helpers ====================

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
