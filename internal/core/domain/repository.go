package domain

import "context"

// ProfileRepository reads and writes profile rows.
type ProfileRepository interface {
	// GetProfile returns ErrProfileNotFound when no row exists; any other
	// error means the query itself failed.
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	// UpdateProfile applies fn to the user's profile, creating an empty one
	// first if needed, and stores the result atomically.
	UpdateProfile(ctx context.Context, userID string, fn func(*Profile)) (*Profile, error)
}

// EventAnswerRepository reads and writes onboarding survey answers.
type EventAnswerRepository interface {
	// FindEventAnswer returns (nil, nil) when the user has no answers for the event.
	FindEventAnswer(ctx context.Context, userID, eventID string) (*EventAnswer, error)
	UpsertEventAnswer(ctx context.Context, answer *EventAnswer) error
}

type EventRepository interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	GetEventByCode(ctx context.Context, code string) (*Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	UpdateEventStatus(ctx context.Context, id string, status EventStatus) error
	SetEventQRURL(ctx context.Context, id, qrURL string) error
	// AddAttendee returns false when the user already attends the event.
	AddAttendee(ctx context.Context, eventID, userID string) (bool, error)
	ListAttendees(ctx context.Context, eventID string) ([]Attendee, error)
	// ListActiveEventsForUser returns active events the user joined, most recent join first.
	ListActiveEventsForUser(ctx context.Context, userID string) ([]Event, error)
}

type ConnectionRepository interface {
	// CreateConnection returns ErrConnectionExists when a pending or accepted
	// connection already links the pair in either direction.
	CreateConnection(ctx context.Context, conn *Connection) error
	GetConnection(ctx context.Context, id string) (*Connection, error)
	// FindBetween returns the non-rejected connection between two users in
	// either direction, or (nil, nil).
	FindBetween(ctx context.Context, userA, userB string) (*Connection, error)
	// UpdateConnectionStatus only moves a pending connection; an answered one
	// returns ErrConnectionExists.
	UpdateConnectionStatus(ctx context.Context, id string, status ConnectionStatus) error
	ListConnectionsForUser(ctx context.Context, userID string) ([]Connection, error)
}

type MatchRepository interface {
	ListMatches(ctx context.Context, userID, eventID string) ([]Match, error)
	GetMatch(ctx context.Context, id string) (*Match, error)
}

// ExternalAPI is the matching/asset service that owns embeddings, match
// computation, QR codes and recap images.
type ExternalAPI interface {
	GenerateEmbedding(ctx context.Context, userID, hobbies, about string) ([]float64, error)
	ComputeMatches(ctx context.Context, userID, eventID string) ([]ComputedMatch, error)
	GenerateEventQR(ctx context.Context, eventID string) (string, error)
	GenerateRecap(ctx context.Context, eventID, userID string) (string, error)
}

// EventPublisher emits domain events for downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Close() error
}

// GenerationStore hands out monotonically increasing resolution generations
// per user. Current returns 0 when the user has none.
//
// The epoch counts writes that affect a user's onboarding status. It is
// shared by all replicas so an evaluation started before a write is never
// joined after it.
type GenerationStore interface {
	Next(ctx context.Context, userID string) (uint64, error)
	Current(ctx context.Context, userID string) (uint64, error)
	Epoch(ctx context.Context, userID string) (uint64, error)
	BumpEpoch(ctx context.Context, userID string) error
}
