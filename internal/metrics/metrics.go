// Package metrics exposes Prometheus collectors for leaderboard and scoring activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services report to
type Recorder interface {
	ObserveLeaderboardBuild(competition string, entries int, d time.Duration)
	IncScoresSubmitted(competition string)
	IncHeatAssignments(competition string, outcome string)
}

// Metrics holds the collectors on their own registry
type Metrics struct {
	registry          *prometheus.Registry
	leaderboardBuilds *prometheus.HistogramVec
	leaderboardSize   *prometheus.GaugeVec
	scoresSubmitted   *prometheus.CounterVec
	heatAssignments   *prometheus.CounterVec
}

// New registers the fitlo collectors plus Go runtime and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		leaderboardBuilds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fitlo",
			Name:      "leaderboard_build_seconds",
			Help:      "Time spent ranking a competition leaderboard.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		}, []string{"competition"}),
		leaderboardSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fitlo",
			Name:      "leaderboard_entries",
			Help:      "Entries ranked in the most recent leaderboard build.",
		}, []string{"competition"}),
		scoresSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitlo",
			Name:      "scores_submitted_total",
			Help:      "Scores recorded by judges or organizers.",
		}, []string{"competition"}),
		heatAssignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitlo",
			Name:      "heat_assignments_total",
			Help:      "Heat assignment attempts by outcome.",
		}, []string{"competition", "outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.leaderboardBuilds,
		m.leaderboardSize,
		m.scoresSubmitted,
		m.heatAssignments,
	)
	return m
}

func (m *Metrics) ObserveLeaderboardBuild(competition string, entries int, d time.Duration) {
	m.leaderboardBuilds.WithLabelValues(competition).Observe(d.Seconds())
	m.leaderboardSize.WithLabelValues(competition).Set(float64(entries))
}

func (m *Metrics) IncScoresSubmitted(competition string) {
	m.scoresSubmitted.WithLabelValues(competition).Inc()
}

func (m *Metrics) IncHeatAssignments(competition, outcome string) {
	m.heatAssignments.WithLabelValues(competition, outcome).Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Noop discards everything
type Noop struct{}

func (Noop) ObserveLeaderboardBuild(string, int, time.Duration) {}
func (Noop) IncScoresSubmitted(string)                          {}
func (Noop) IncHeatAssignments(string, string)                  {}

var (
	_ Recorder = (*Metrics)(nil)
	_ Recorder = Noop{}
)
