package psql

import (
	"context"
	"errors"
	"fmt"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventAnswerRepository implements domain.EventAnswerRepository using PostgreSQL
type EventAnswerRepository struct {
	pool *pgxpool.Pool
}

func NewEventAnswerRepository(pool *pgxpool.Pool) *EventAnswerRepository {
	return &EventAnswerRepository{pool: pool}
}

// FindEventAnswer is a zero-or-one lookup: an absent row is (nil, nil), not an error.
func (r *EventAnswerRepository) FindEventAnswer(ctx context.Context, userID, eventID string) (*domain.EventAnswer, error) {
	query := `SELECT user_id, event_id, question1, question2, created_at
		FROM event_answers WHERE user_id = $1 AND event_id = $2 LIMIT 1`

	var a domain.EventAnswer
	err := r.pool.QueryRow(ctx, query, userID, eventID).Scan(
		&a.UserID,
		&a.EventID,
		&a.Question1,
		&a.Question2,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query event answer: %w", err)
	}
	return &a, nil
}

func (r *EventAnswerRepository) UpsertEventAnswer(ctx context.Context, a *domain.EventAnswer) error {
	query := `
		INSERT INTO event_answers (user_id, event_id, question1, question2)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, event_id) DO UPDATE SET
			question1 = EXCLUDED.question1,
			question2 = EXCLUDED.question2
		RETURNING created_at`

	if err := r.pool.QueryRow(ctx, query, a.UserID, a.EventID, a.Question1, a.Question2).Scan(&a.CreatedAt); err != nil {
		return fmt.Errorf("upsert event answer: %w", err)
	}
	return nil
}
