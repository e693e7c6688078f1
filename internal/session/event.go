package session

import "time"

// EventType identifies a controller event.
type EventType string

const (
	EventProgress         EventType = "progress"
	EventActivated        EventType = "activated"
	EventActivationFailed EventType = "activation_failed"
	EventReleased         EventType = "released"
	EventCancelled        EventType = "cancelled"
)

// Event is emitted by the controller on every sample and state change.
type Event struct {
	Type     EventType
	Progress float64
	Elapsed  time.Duration

	// set for EventActivated and EventCancelled
	AlertID     uint
	ActivatedAt string

	// set for EventActivationFailed
	Err error
}

// Observer receives controller events. It is called without holding any
// controller lock and must not block for long.
type Observer func(Event)
