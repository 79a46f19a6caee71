package broadcast

import (
	"time"

	"pipeline_rescue/internal/game"
)

type EventType string

const (
	// server - client
	EventTick      EventType = "tick"
	EventPenalty   EventType = "penalty"
	EventCompleted EventType = "completed"
)

// Event is the frame pushed to every live connection. One shape serves both
// transports; penalty and outcome are set only for their event types.
type Event struct {
	Type      EventType    `json:"type"`
	Remaining int          `json:"remaining"`
	Elapsed   int          `json:"elapsed"`
	Timestamp int64        `json:"timestamp"`
	Completed bool         `json:"completed"`
	Penalty   int          `json:"penalty,omitempty"`
	Outcome   game.Outcome `json:"outcome,omitempty"`
}

// NewEvent builds an event of the given type from a timer snapshot.
func NewEvent(t EventType, snap game.Snapshot, now time.Time) Event {
	return Event{
		Type:      t,
		Remaining: snap.Remaining,
		Elapsed:   snap.Elapsed,
		Timestamp: now.Unix(),
		Completed: snap.Completed,
		Outcome:   snap.Outcome,
	}
}

// Terminal reports whether a connection should close after relaying ev.
func (e Event) Terminal() bool {
	return e.Completed || e.Remaining <= 0
}
