package services_test

import (
	"sync"
	"time"

	"github.com/fitlo/fitlo/internal/logger"
)

var testLog = logger.NewDiscard()

// recordingBroadcaster captures broadcasts for assertions
type recordingBroadcaster struct {
	mu          sync.Mutex
	leaderboard []string
	heats       []int
}

func (b *recordingBroadcaster) BroadcastLeaderboardUpdated(competition string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leaderboard = append(b.leaderboard, competition)
}

func (b *recordingBroadcaster) BroadcastHeatUpdated(competition string, heatID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.heats = append(b.heats, heatID)
}

func (b *recordingBroadcaster) leaderboardCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.leaderboard)
}

// recordingMetrics captures metric calls for assertions
type recordingMetrics struct {
	mu       sync.Mutex
	builds   int
	entries  int
	scores   map[string]int
	outcomes map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{scores: map[string]int{}, outcomes: map[string]int{}}
}

func (m *recordingMetrics) ObserveLeaderboardBuild(competition string, entries int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds++
	m.entries = entries
}

func (m *recordingMetrics) IncScoresSubmitted(competition string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[competition]++
}

func (m *recordingMetrics) IncHeatAssignments(competition, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}
