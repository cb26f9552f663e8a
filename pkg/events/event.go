// Package events defines the lifecycle events the ideation pipeline emits
// for the notification subsystem.
package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeIdeationStarted   = "IDEATION_STARTED"
	TypeIdeationCompleted = "IDEATION_COMPLETED"
	TypeIdeationFailed    = "IDEATION_FAILED"
)

// Event is anything the event bus can deliver.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// IdeationStarted fires when a session is accepted and its run dispatched.
type IdeationStarted struct {
	SessionId  uuid.UUID
	UserId     uuid.UUID
	OccurredAt time.Time
}

func (e IdeationStarted) EventType() string { return TypeIdeationStarted }

func (e IdeationStarted) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.SessionId,
		"user_id":    e.UserId,
	}
}

func (e IdeationStarted) Timestamp() time.Time { return e.OccurredAt }

// IdeationCompleted fires when a run reaches the completed state.
type IdeationCompleted struct {
	SessionId         uuid.UUID
	UserId            uuid.UUID
	Confidence        string
	FinalIdeaCount    int
	DuplicatesRemoved int
	OccurredAt        time.Time
}

func (e IdeationCompleted) EventType() string { return TypeIdeationCompleted }

func (e IdeationCompleted) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":         e.SessionId,
		"user_id":            e.UserId,
		"confidence":         e.Confidence,
		"final_idea_count":   e.FinalIdeaCount,
		"duplicates_removed": e.DuplicatesRemoved,
	}
}

func (e IdeationCompleted) Timestamp() time.Time { return e.OccurredAt }

// IdeationFailed fires when a run lands in the failed state. Retryable
// tells the notifier whether to suggest a retry to the user.
type IdeationFailed struct {
	SessionId  uuid.UUID
	UserId     uuid.UUID
	Reason     string
	Retryable  bool
	OccurredAt time.Time
}

func (e IdeationFailed) EventType() string { return TypeIdeationFailed }

func (e IdeationFailed) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.SessionId,
		"user_id":    e.UserId,
		"error":      e.Reason,
		"retryable":  e.Retryable,
	}
}

func (e IdeationFailed) Timestamp() time.Time { return e.OccurredAt }
