package ports

import (
	"context"
	"time"
)

type EventType string

const (
	EventExperimentCreated      EventType = "experiment.created"
	EventExperimentCreateFailed EventType = "experiment.create_failed"
	EventExperimentDeleted      EventType = "experiment.deleted"
	EventExperimentStatus       EventType = "experiment.status_changed"
	EventSessionStarted         EventType = "session.started"
	EventSessionStartFailed     EventType = "session.start_failed"
	EventSessionEnded           EventType = "session.ended"
	EventSessionStopped         EventType = "session.stopped"
	EventTrialRecorded          EventType = "trial.recorded"
)

// Event is a user-facing notification about a lifecycle change.
type Event struct {
	Type        EventType `json:"type"`
	UserID      string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SubjectID   string    `json:"subject_id,omitempty"`
	Failed      bool      `json:"failed"`
	At          time.Time `json:"at"`
}

// EventPublisher delivers events to subscribers without blocking the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}
