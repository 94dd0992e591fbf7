package psql

import (
	"context"
	"errors"
	"fmt"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// date and time are selected as text so they round-trip unchanged to clients
const eventColumns = `id, name, description, date::text, "time"::text, code, status, qr_url, created_by, created_at`

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations
const uniqueViolation = "23505"

// EventRepository implements domain.EventRepository using PostgreSQL
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// CreateEvent inserts the event and fills in its generated id and timestamp
func (r *EventRepository) CreateEvent(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, description, date, "time", code, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, e.Name, e.Description, e.Date, e.Time, e.Code, e.Status, e.CreatedBy).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert event %q: %w", e.Code, domain.ErrEventCodeTaken)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *EventRepository) GetEventByCode(ctx context.Context, code string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE code = $1`
	return r.getOne(ctx, query, code)
}

func (r *EventRepository) getOne(ctx context.Context, query string, arg any) (*domain.Event, error) {
	event, err := scanEvent(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("query event: %w", err)
	}
	return event, nil
}

// ListEvents returns every event that is not soft-deleted, newest first
func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE status <> 'deleted' ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *EventRepository) UpdateEventStatus(ctx context.Context, id string, status domain.EventStatus) error {
	result, err := r.pool.Exec(ctx, `UPDATE events SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) SetEventQRURL(ctx context.Context, id, qrURL string) error {
	result, err := r.pool.Exec(ctx, `UPDATE events SET qr_url = $1 WHERE id = $2`, qrURL, id)
	if err != nil {
		return fmt.Errorf("update event qr url: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// AddAttendee returns false when the user already attends the event
func (r *EventRepository) AddAttendee(ctx context.Context, eventID, userID string) (bool, error) {
	query := `INSERT INTO event_attendees (event_id, user_id) VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING`

	result, err := r.pool.Exec(ctx, query, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("insert attendee: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *EventRepository) ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error) {
	query := `
		SELECT a.event_id, a.user_id, p.full_name, p.job_title, p.company, a.joined_at
		FROM event_attendees a
		LEFT JOIN profiles p ON p.id = a.user_id
		WHERE a.event_id = $1
		ORDER BY a.joined_at`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("query attendees: %w", err)
	}
	defer rows.Close()

	attendees := []domain.Attendee{}
	for rows.Next() {
		var a domain.Attendee
		if err := rows.Scan(&a.EventID, &a.UserID, &a.FullName, &a.JobTitle, &a.Company, &a.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendees: %w", err)
	}
	return attendees, nil
}

func (r *EventRepository) ListActiveEventsForUser(ctx context.Context, userID string) ([]domain.Event, error) {
	query := `
		SELECT e.id, e.name, e.description, e.date::text, e."time"::text, e.code, e.status,
			e.qr_url, e.created_by, e.created_at
		FROM events e
		JOIN event_attendees a ON a.event_id = e.id
		WHERE a.user_id = $1 AND e.status = 'active'
		ORDER BY a.joined_at DESC`
	return r.list(ctx, query, userID)
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.Date,
		&e.Time,
		&e.Code,
		&e.Status,
		&e.QRURL,
		&e.CreatedBy,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
