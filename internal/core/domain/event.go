package domain

import "time"

// EventStatus is the lifecycle state of an event. Events are never hard-deleted.
type EventStatus string

const (
	EventActive  EventStatus = "active"
	EventOver    EventStatus = "over"
	EventDeleted EventStatus = "deleted"
)

type Event struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Date        string      `json:"date"`
	Time        *string     `json:"time"`
	Code        string      `json:"code"`
	Status      EventStatus `json:"status"`
	QRURL       *string     `json:"qr_url"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Attendee is a user who joined an event, with the profile summary shown in
// attendee lists.
type Attendee struct {
	EventID  string    `json:"event_id"`
	UserID   string    `json:"user_id"`
	FullName *string   `json:"full_name"`
	JobTitle *string   `json:"job_title"`
	Company  *string   `json:"company"`
	JoinedAt time.Time `json:"joined_at"`
}

type CreateEventRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Date        string  `json:"date" binding:"required,datetime=2006-01-02"`
	Time        *string `json:"time" binding:"omitempty,datetime=15:04"`
	Code        string  `json:"code" binding:"omitempty,eventcode"`
}

type JoinEventRequest struct {
	Code string `json:"code" binding:"required,max=32"`
}

// JoinResult reports the joined event and where the client goes next.
type JoinResult struct {
	Event         *Event `json:"event"`
	AlreadyJoined bool   `json:"already_joined"`
	RedirectTo    string `json:"redirect_to"`
}
