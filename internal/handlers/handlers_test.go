package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fitlo/fitlo/internal/auth"
	"github.com/fitlo/fitlo/internal/handlers"
	"github.com/fitlo/fitlo/internal/logger"
	"github.com/fitlo/fitlo/internal/metrics"
	"github.com/fitlo/fitlo/internal/repository"
	"github.com/fitlo/fitlo/internal/services"
	"github.com/fitlo/fitlo/internal/testutil"
	"github.com/fitlo/fitlo/internal/websocket"
)

type testEnv struct {
	h       *handlers.Handlers
	router  http.Handler
	repo    repository.FullRepository
	fx      testutil.Fixture
	session *http.Cookie
}

func newServices(repo repository.FullRepository) (*services.CompetitionService, *services.EntryService, *services.ScoreService, *services.LeaderboardService, *services.HeatService) {
	log := logger.NewDiscard()
	rec := metrics.Noop{}
	return services.NewCompetitionService(log, repo, "http://fitlo.test"),
		services.NewEntryService(log, repo),
		services.NewScoreService(log, repo, rec),
		services.NewLeaderboardService(log, repo, rec),
		services.NewHeatService(log, repo, rec)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	fx := testutil.SeedCompetition(t, repo)

	h := handlers.NewForTesting(newServices(repo))
	token, err := h.Auth.Login(context.Background(), "test-password")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	return &testEnv{
		h:       h,
		router:  h.Router(),
		repo:    repo,
		fx:      fx,
		session: &http.Cookie{Name: auth.CookieName, Value: token},
	}
}

// do sends a request through the router. Admin paths carry the session cookie.
func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if strings.HasPrefix(path, "/api/admin/") {
		req.AddCookie(e.session)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	got := decode[handlers.APIError](t, rec)
	if got.Code != code {
		t.Errorf("expected code %q, got %q (%s)", code, got.Code, got.Message)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do("GET", "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do("GET", "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	expectError(t, env.do("GET", "/nope", nil), http.StatusNotFound, handlers.ErrCodeNotFound)
}

func TestAdminRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/api/admin/competitions", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	expectError(t, rec, http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)

	// Wrong password
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/admin/login", strings.NewReader(`{"password":"nope"}`)))
	expectError(t, rec, http.StatusUnauthorized, handlers.ErrCodeUnauthorized)

	// Malformed body
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/admin/login", strings.NewReader(`{`)))
	expectError(t, rec, http.StatusBadRequest, handlers.ErrCodeBadRequest)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/admin/login", strings.NewReader(`{"password":"test-password"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("expected a session cookie")
	}

	req := httptest.NewRequest("GET", "/api/admin/competitions", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected session to work, got %d", rec.Code)
	}

	req = httptest.NewRequest("POST", "/api/admin/logout", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/admin/competitions", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestCompetitionSetupFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do("POST", "/api/admin/competitions", handlers.CompetitionCreateRequest{Name: "Summer Games"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	comp := decode[struct {
		ID              int    `json:"id"`
		Slug            string `json:"slug"`
		HeatLimitPolicy string `json:"heat_limit_policy"`
	}](t, rec)
	if comp.Slug == "" || comp.HeatLimitPolicy != "LANES" {
		t.Errorf("unexpected competition %+v", comp)
	}
	base := fmt.Sprintf("/api/admin/competitions/%d", comp.ID)

	rec = env.do("POST", base+"/ticket-types", handlers.TicketTypeCreateRequest{Name: "Masters", MaxEntriesPerHeat: 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("ticket type: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	ttID := decode[handlers.IDResponse](t, rec).ID

	rec = env.do("POST", base+"/workouts", handlers.WorkoutCreateRequest{
		Name: "Deadlift 1RM", UnitOfMeasurement: "KILOGRAMS", ScoreType: "WEIGHT_MORE_IS_BETTER", Visible: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("workout: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do("POST", base+"/entries", handlers.EntryCreateRequest{Name: "Dana", TicketTypeID: int(ttID)})
	if rec.Code != http.StatusCreated {
		t.Fatalf("entry: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	for path, want := range map[string]int{
		base + "/ticket-types": 1,
		base + "/workouts":     1,
		base + "/entries":      1,
		base + "/heats":        0,
	} {
		rec = env.do("GET", path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if got := len(decode[[]json.RawMessage](t, rec)); got != want {
			t.Errorf("%s: expected %d items, got %d", path, want, got)
		}
	}

	rec = env.do("PUT", base+"/heat-limit-policy", handlers.HeatLimitPolicyRequest{Policy: "TICKET_TYPE"})
	if rec.Code != http.StatusOK {
		t.Fatalf("policy: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.do("GET", base, nil)
	if got := decode[struct {
		HeatLimitPolicy string `json:"heat_limit_policy"`
	}](t, rec).HeatLimitPolicy; got != "TICKET_TYPE" {
		t.Errorf("expected TICKET_TYPE policy, got %q", got)
	}
}

func TestCompetitionValidation(t *testing.T) {
	env := newTestEnv(t)
	base := fmt.Sprintf("/api/admin/competitions/%d", env.fx.CompetitionID)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"blank competition", "POST", "/api/admin/competitions", handlers.CompetitionCreateRequest{}, 400, handlers.ErrCodeValidation},
		{"bad policy", "PUT", base + "/heat-limit-policy", handlers.HeatLimitPolicyRequest{Policy: "NOPE"}, 400, handlers.ErrCodeValidation},
		{"bad unit", "POST", base + "/workouts", handlers.WorkoutCreateRequest{Name: "X", UnitOfMeasurement: "FURLONGS", ScoreType: "REPS_MORE_IS_BETTER"}, 400, handlers.ErrCodeValidation},
		{"invalid id", "GET", "/api/admin/competitions/abc", nil, 400, handlers.ErrCodeBadRequest},
		{"missing competition", "GET", "/api/admin/competitions/999", nil, 404, handlers.ErrCodeNotFound},
		{"missing competition list", "GET", "/api/admin/competitions/999/entries", nil, 404, handlers.ErrCodeNotFound},
		{"missing visibility flag", "PUT", fmt.Sprintf("/api/admin/workouts/%d/visibility", env.fx.WorkoutIDs[0]), map[string]string{}, 400, handlers.ErrCodeBadRequest},
		{"missing workout", "PUT", "/api/admin/workouts/999/visibility", map[string]bool{"visible": true}, 404, handlers.ErrCodeNotFound},
		{"entry in other competition", "POST", "/api/admin/competitions/999/entries", handlers.EntryCreateRequest{Name: "X"}, 404, handlers.ErrCodeNotFound},
		{"empty body", "POST", base + "/entries", nil, 400, handlers.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, env.do(tt.method, tt.path, tt.body), tt.status, tt.code)
		})
	}
}

func scorePath(entryID, workoutID int) string {
	return fmt.Sprintf("/api/admin/entries/%d/scores/%d", entryID, workoutID)
}

func TestScoresAndPublicLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.AddEntry(t, env.repo, env.fx.CompetitionID, env.fx.RxID, "Alice")
	bob := testutil.AddEntry(t, env.repo, env.fx.CompetitionID, env.fx.RxID, "Bob")
	cara := testutil.AddEntry(t, env.repo, env.fx.CompetitionID, env.fx.ScaledID, "Cara")
	judge := testutil.AddEntry(t, env.repo, env.fx.CompetitionID, env.fx.VolunteerID, "Judge")
	burpees, fran := env.fx.WorkoutIDs[0], env.fx.WorkoutIDs[1]

	for _, s := range []struct {
		entry, workout int
		value          string
	}{
		{alice, burpees, "60"},
		{alice, fran, "3:00"},
		{bob, burpees, "50"},
		{bob, fran, "2:30"},
		{cara, burpees, "70"},
	} {
		rec := env.do("PUT", scorePath(s.entry, s.workout), handlers.ScoreRequest{Value: s.value})
		if rec.Code != http.StatusOK {
			t.Fatalf("score %+v: expected 200, got %d: %s", s, rec.Code, rec.Body.String())
		}
	}

	expectError(t, env.do("PUT", scorePath(alice, fran), handlers.ScoreRequest{Value: "fast"}), 400, handlers.ErrCodeValidation)
	expectError(t, env.do("PUT", scorePath(judge, fran), handlers.ScoreRequest{Value: "3:00"}), 400, handlers.ErrCodeValidation)
	expectError(t, env.do("PUT", scorePath(999, fran), handlers.ScoreRequest{Value: "3:00"}), 404, handlers.ErrCodeNotFound)

	rec := env.do("GET", "/api/competitions/"+env.fx.Slug+"/leaderboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	lb := decode[handlers.LeaderboardResponse](t, rec)
	if lb.Scope != "All" {
		t.Errorf("expected default scope All, got %q", lb.Scope)
	}
	if len(lb.Entries) != 3 {
		t.Fatalf("expected volunteers excluded, got %d entries", len(lb.Entries))
	}
	wantScopes := []string{"All", "Rx", "Scaled"}
	if strings.Join(lb.Scopes, ",") != strings.Join(wantScopes, ",") {
		t.Errorf("expected scopes %v, got %v", wantScopes, lb.Scopes)
	}
	// Overall: burpees Cara 1, Alice 2, Bob 3; Fran Bob 1, Alice 2, Cara 4 (penalty)
	// Totals: Alice 4, Bob 4, Cara 5; Alice and Bob tie on total and completions
	for _, row := range lb.Entries {
		switch row.Name {
		case "Alice", "Bob":
			if row.Rank != 1 || row.TotalScore != 4 {
				t.Errorf("%s: expected rank 1 total 4, got %d/%d", row.Name, row.Rank, row.TotalScore)
			}
		case "Cara":
			if row.Rank != 3 || row.TotalScore != 5 {
				t.Errorf("Cara: expected rank 3 total 5, got %d/%d", row.Rank, row.TotalScore)
			}
			if row.WorkoutRanks[fran] != 4 {
				t.Errorf("Cara: expected penalty rank 4 on Fran, got %d", row.WorkoutRanks[fran])
			}
		}
	}

	rec = env.do("GET", "/api/competitions/"+env.fx.Slug+"/leaderboard?scope=Scaled", nil)
	lb = decode[handlers.LeaderboardResponse](t, rec)
	if len(lb.Entries) != 1 || lb.Entries[0].Name != "Cara" || lb.Entries[0].Rank != 1 {
		t.Errorf("unexpected Scaled standings %+v", lb.Entries)
	}

	expectError(t, env.do("GET", "/api/competitions/"+env.fx.Slug+"/leaderboard?scope=Elite", nil), 404, handlers.ErrCodeNotFound)
	expectError(t, env.do("GET", "/api/competitions/unknown/leaderboard", nil), 404, handlers.ErrCodeNotFound)

	// Clearing a score drops it from the ranking
	rec = env.do("DELETE", scorePath(cara, burpees), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	expectError(t, env.do("DELETE", scorePath(cara, burpees), nil), 404, handlers.ErrCodeNotFound)
}

func TestHiddenWorkoutOnlyOnAdminLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.AddEntry(t, env.repo, env.fx.CompetitionID, env.fx.RxID, "Alice")
	fran := env.fx.WorkoutIDs[1]

	rec := env.do("PUT", fmt.Sprintf("/api/admin/workouts/%d/visibility", fran), map[string]bool{"visible": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env.do("PUT", scorePath(alice, fran), handlers.ScoreRequest{Value: "4:10"})

	public := decode[handlers.LeaderboardResponse](t, env.do("GET", "/api/competitions/"+env.fx.Slug+"/leaderboard", nil))
	if len(public.Workouts) != 1 {
		t.Errorf("expected 1 public workout, got %d", len(public.Workouts))
	}
	for _, s := range public.Entries[0].Scores {
		if s.WorkoutID == fran {
			t.Error("hidden workout score leaked into public leaderboard")
		}
	}

	admin := decode[handlers.LeaderboardResponse](t, env.do("GET", fmt.Sprintf("/api/admin/competitions/%d/leaderboard", env.fx.CompetitionID), nil))
	if len(admin.Workouts) != 2 {
		t.Errorf("expected 2 admin workouts, got %d", len(admin.Workouts))
	}
	if admin.Entries[0].WorkoutRanks[fran] != 1 {
		t.Errorf("expected Alice first on hidden workout, got %d", admin.Entries[0].WorkoutRanks[fran])
	}
}

func TestEntries(t *testing.T) {
	env := newTestEnv(t)
	base := fmt.Sprintf("/api/admin/competitions/%d", env.fx.CompetitionID)

	rec := env.do("POST", base+"/entries", handlers.EntryCreateRequest{
		Name: "Team Chalk", TicketTypeID: env.fx.RxID, TeamMembers: []string{"Ann", " ", "Ben"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	id := decode[handlers.IDResponse](t, rec).ID

	rec = env.do("GET", fmt.Sprintf("/api/admin/entries/%d", id), nil)
	got := decode[struct {
		Name        string   `json:"name"`
		TeamMembers []string `json:"team_members"`
	}](t, rec)
	if got.Name != "Team Chalk" || len(got.TeamMembers) != 2 {
		t.Errorf("unexpected entry %+v", got)
	}

	rec = env.do("DELETE", fmt.Sprintf("/api/admin/entries/%d", id), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	expectError(t, env.do("GET", fmt.Sprintf("/api/admin/entries/%d", id), nil), 404, handlers.ErrCodeNotFound)

	rec = env.do("POST", base+"/seed", handlers.SeedRequest{Count: 5, WithScores: true})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if created := decode[handlers.SeedResponse](t, rec).Created; created != 5 {
		t.Errorf("expected 5 seeded, got %d", created)
	}
	expectError(t, env.do("POST", base+"/seed", handlers.SeedRequest{Count: 0}), 400, handlers.ErrCodeValidation)
}

func TestHeats(t *testing.T) {
	env := newTestEnv(t)
	base := fmt.Sprintf("/api/admin/competitions/%d", env.fx.CompetitionID)
	a := testutil.AddEntry(t, env.repo, env.fx.CompetitionID, env.fx.RxID, "A")
	b := testutil.AddEntry(t, env.repo, env.fx.CompetitionID, env.fx.RxID, "B")
	c := testutil.AddEntry(t, env.repo, env.fx.CompetitionID, env.fx.ScaledID, "C")
	judge := testutil.AddEntry(t, env.repo, env.fx.CompetitionID, env.fx.VolunteerID, "Judge")

	rec := env.do("POST", base+"/heats", handlers.HeatCreateRequest{WorkoutID: env.fx.WorkoutIDs[0], Name: "Heat 1", Lanes: 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	heatID := decode[handlers.IDResponse](t, rec).ID
	assign := fmt.Sprintf("/api/admin/heats/%d/assignments", heatID)

	rec = env.do("POST", assign, handlers.AssignmentRequest{EntryID: a, Lane: 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if lane := decode[handlers.AssignmentResponse](t, rec).Lane; lane != 2 {
		t.Errorf("expected lane 2, got %d", lane)
	}

	rec = env.do("POST", assign, handlers.AssignmentRequest{EntryID: b})
	if lane := decode[handlers.AssignmentResponse](t, rec).Lane; lane != 1 {
		t.Errorf("expected auto lane 1, got %d", lane)
	}

	expectError(t, env.do("POST", assign, handlers.AssignmentRequest{EntryID: c}), 409, handlers.ErrCodeCapacity)
	expectError(t, env.do("POST", assign, handlers.AssignmentRequest{EntryID: a}), 409, handlers.ErrCodeConflict)
	expectError(t, env.do("POST", assign, handlers.AssignmentRequest{EntryID: judge}), 400, handlers.ErrCodeValidation)
	expectError(t, env.do("POST", base+"/heats", handlers.HeatCreateRequest{WorkoutID: env.fx.WorkoutIDs[0], Name: "Big", Lanes: 100}), 400, handlers.ErrCodeValidation)

	rec = env.do("GET", "/api/competitions/"+env.fx.Slug+"/heats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	heatList := decode[[]services.HeatDetail](t, rec)
	if len(heatList) != 1 || len(heatList[0].Assignments) != 2 {
		t.Fatalf("unexpected heats %+v", heatList)
	}

	rec = env.do("DELETE", fmt.Sprintf("%s/%d", assign, a), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = env.do("POST", assign, handlers.AssignmentRequest{EntryID: c})
	if lane := decode[handlers.AssignmentResponse](t, rec).Lane; lane != 2 {
		t.Errorf("expected freed lane 2, got %d", lane)
	}

	expectError(t, env.do("GET", "/api/competitions/unknown/heats", nil), 404, handlers.ErrCodeNotFound)
}

func TestExportAndQR(t *testing.T) {
	env := newTestEnv(t)
	testutil.AddEntry(t, env.repo, env.fx.CompetitionID, env.fx.RxID, "Alice")
	base := fmt.Sprintf("/api/admin/competitions/%d", env.fx.CompetitionID)

	rec := env.do("GET", base+"/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected content type %q", ct)
	}
	// XLSX files are zip archives
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("expected a zip payload")
	}

	rec = env.do("GET", base+"/qr", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected a PNG payload")
	}

	expectError(t, env.do("GET", "/api/admin/competitions/999/export", nil), 404, handlers.ErrCodeNotFound)
	expectError(t, env.do("GET", "/api/admin/competitions/999/qr", nil), 404, handlers.ErrCodeNotFound)
}

func TestWebSocketParams(t *testing.T) {
	env := newTestEnv(t)

	expectError(t, env.do("GET", "/ws", nil), 400, handlers.ErrCodeBadRequest)
	expectError(t, env.do("GET", "/ws?competition=unknown", nil), 404, handlers.ErrCodeNotFound)
}

func TestRateLimit(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	fx := testutil.SeedCompetition(t, repo)
	comp, entry, score, lb, heat := newServices(repo)
	log := logger.NewDiscard()
	h := handlers.New(comp, entry, score, lb, heat, auth.New("pw"), websocket.New(log), metrics.New().Handler(), 1, 2, log)
	router := h.Router()

	path := "/api/competitions/" + fx.Slug + "/leaderboard"
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 200,200,429 got %v", codes)
	}

	// Another client has its own budget
	req := httptest.NewRequest("GET", path, nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected other IP to pass, got %d", rec.Code)
	}

	// Health checks are never limited
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/healthz", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("healthz limited: %d", rec.Code)
		}
	}
}
