package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "CANCELLATION_STARTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the standard Event implementation used across the engine.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Lifecycle event types emitted by the cancellation engine.
const (
	TypeCancellationStarted   = "CANCELLATION_STARTED"
	TypeCancellationProgress  = "CANCELLATION_PROGRESS"
	TypeCancellationCompleted = "CANCELLATION_COMPLETED"
	TypeCancellationFailed    = "CANCELLATION_FAILED"
	TypeCancellationScheduled = "CANCELLATION_SCHEDULED"
)

// NewCancellationEvent builds a lifecycle event for one orchestration.
func NewCancellationEvent(eventType, orchestrationId string, data map[string]interface{}) Event {
	payload := map[string]interface{}{
		"orchestration_id": orchestrationId,
	}
	for k, v := range data {
		payload[k] = v
	}
	return BaseEvent{
		Type:       eventType,
		Data:       payload,
		OccurredAt: time.Now().UTC(),
	}
}
