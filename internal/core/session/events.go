package session

import "time"

// EventType defines the type of Timer event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
	EventCompleted   EventType = "completed"
)

// Event represents a Timer update for observers.
type Event struct {
	Type  EventType
	State State
	At    time.Time
}
