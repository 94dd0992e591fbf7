package psql

import (
	"context"
	"errors"
	"fmt"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const matchColumns = `id, user_id, match_user_id, event_id,
	coalesce(why_meet, ''), coalesce(things_in_common, ''), coalesce(dive_deeper, ''), created_at`

// MatchRepository reads matches written by the external matching service
type MatchRepository struct {
	pool *pgxpool.Pool
}

func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{pool: pool}
}

func (r *MatchRepository) ListMatches(ctx context.Context, userID, eventID string) ([]domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE user_id = $1 AND event_id = $2
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := []domain.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

func (r *MatchRepository) GetMatch(ctx context.Context, id string) (*domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, fmt.Errorf("query match: %w", err)
	}
	return m, nil
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	err := row.Scan(&m.ID, &m.UserID, &m.MatchUserID, &m.EventID,
		&m.WhyMeet, &m.ThingsInCommon, &m.DiveDeeper, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
