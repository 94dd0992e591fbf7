package domain

import "time"

// DomainEventType doubles as the message routing key.
type DomainEventType string

const (
	EventProfileUpdated         DomainEventType = "profile.updated"
	EventAnswersSubmitted       DomainEventType = "event_answers.submitted"
	EventJoined                 DomainEventType = "event.joined"
	EventConnectionRequested    DomainEventType = "connection.requested"
	EventConnectionStatusChange DomainEventType = "connection.status_changed"
)

type DomainEvent struct {
	Type       DomainEventType   `json:"event_type"`
	UserID     string            `json:"user_id"`
	EventID    string            `json:"event_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewDomainEvent stamps an event with the current UTC time.
func NewDomainEvent(t DomainEventType, userID string) DomainEvent {
	return DomainEvent{Type: t, UserID: userID, OccurredAt: time.Now().UTC()}
}
