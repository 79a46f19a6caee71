package handlers

import (
	"time"

	"pipeline_rescue/internal/broadcast"
	"pipeline_rescue/internal/game"
	"pipeline_rescue/internal/repository"
	"pipeline_rescue/internal/scoring"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	penaltiesApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_penalties_total",
			Help: "Penalties applied, by triggering check",
		},
		[]string{"source"},
	)
	roundsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_rounds_completed_total",
			Help: "Rounds ended, by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(penaltiesApplied)
	prometheus.MustRegister(roundsCompleted)
}

// Handler carries the shared game core into every endpoint. The Model is nil
// when training failed at startup; endpoints that need it answer 500.
type Handler struct {
	State   *game.State
	Hub     *broadcast.Hub
	Sites   *repository.SiteRepository
	Model   *scoring.Model
	Clock   clockwork.Clock
	Penalty time.Duration
}

func NewHandler(state *game.State, hub *broadcast.Hub, sites *repository.SiteRepository, model *scoring.Model, clock clockwork.Clock, penalty time.Duration) *Handler {
	return &Handler{
		State:   state,
		Hub:     hub,
		Sites:   sites,
		Model:   model,
		Clock:   clock,
		Penalty: penalty,
	}
}

// applyPenalty shifts the timer and notifies every live connection. Returns
// the new remaining seconds; a completed round absorbs the penalty silently.
func (h *Handler) applyPenalty(source string) int {
	remaining, applied := h.State.ApplyPenalty(h.Penalty)
	if !applied {
		return remaining
	}
	penaltiesApplied.WithLabelValues(source).Inc()

	ev := broadcast.NewEvent(broadcast.EventPenalty, h.State.Snapshot(), h.Clock.Now())
	ev.Penalty = int(h.Penalty / time.Second)
	h.Hub.Publish(ev)
	return remaining
}

// complete ends the round and notifies every live connection. The broadcast
// always reflects the first outcome, even when complete races another caller.
func (h *Handler) complete(outcome game.Outcome) {
	ended := h.State.Complete(outcome)
	snap := h.State.Snapshot()
	if ended {
		roundsCompleted.WithLabelValues(string(snap.Outcome)).Inc()
	}
	h.Hub.Publish(broadcast.NewEvent(broadcast.EventCompleted, snap, h.Clock.Now()))
}
