package srv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"lowlife.exe.dev/duel"
	"lowlife.exe.dev/updates"
)

var (
	// InteractionsTotal counts interactions by kind (ping, command, component, ...).
	InteractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lowlife_interactions_total",
		Help: "Discord interactions received by kind",
	}, []string{"kind"})

	// DuelsStartedTotal counts duels by opponent (player or ai).
	DuelsStartedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lowlife_duels_started_total",
		Help: "Duels started by mode",
	}, []string{"mode"})

	DuelsFinishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lowlife_duels_finished_total",
		Help: "Duels finished by outcome",
	}, []string{"outcome"})

	DuelActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lowlife_duel_actions_total",
		Help: "Duel buttons pressed by action",
	}, []string{"action"})

	UpdatesPostedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lowlife_updates_posted_total",
		Help: "Changelog post attempts by result",
	}, []string{"result"})
)

func observeDuelStarted(ai bool) {
	mode := "player"
	if ai {
		mode = "ai"
	}
	DuelsStartedTotal.WithLabelValues(mode).Inc()
}

func observeDuelFinished(kind duel.ResultKind) {
	DuelsFinishedTotal.WithLabelValues(string(kind)).Inc()
}

// ObserveUpdatePost records one poster result.
func ObserveUpdatePost(_ updates.Entry, status updates.Status) {
	UpdatesPostedTotal.WithLabelValues(string(status)).Inc()
}
