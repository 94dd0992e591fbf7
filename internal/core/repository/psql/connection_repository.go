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

const connectionColumns = `id, sender_id, receiver_id, status, created_at`

// ConnectionRepository implements domain.ConnectionRepository using PostgreSQL
type ConnectionRepository struct {
	pool *pgxpool.Pool
}

func NewConnectionRepository(pool *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{pool: pool}
}

// CreateConnection inserts c. connections_active_pair_idx rejects a second
// non-rejected row for the same pair in either direction with ErrConnectionExists.
func (r *ConnectionRepository) CreateConnection(ctx context.Context, c *domain.Connection) error {
	query := `INSERT INTO connections (sender_id, receiver_id, status) VALUES ($1, $2, $3)
		RETURNING id, created_at`

	if err := r.pool.QueryRow(ctx, query, c.SenderID, c.ReceiverID, c.Status).Scan(&c.ID, &c.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert connection: %w", domain.ErrConnectionExists)
		}
		return fmt.Errorf("insert connection: %w", err)
	}
	return nil
}

func (r *ConnectionRepository) GetConnection(ctx context.Context, id string) (*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`

	conn, err := scanConnection(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("query connection: %w", err)
	}
	return conn, nil
}

func (r *ConnectionRepository) FindBetween(ctx context.Context, userA, userB string) (*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
			AND status <> 'rejected'
		LIMIT 1`

	conn, err := scanConnection(r.pool.QueryRow(ctx, query, userA, userB))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query connection between users: %w", err)
	}
	return conn, nil
}

// UpdateConnectionStatus answers a pending connection. Only one answer wins:
// a row that is no longer pending yields ErrConnectionExists.
func (r *ConnectionRepository) UpdateConnectionStatus(ctx context.Context, id string, status domain.ConnectionStatus) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE connections SET status = $1 WHERE id = $2 AND status = 'pending'`, status, id)
	if err != nil {
		return fmt.Errorf("update connection status: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM connections WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check connection: %w", err)
	}
	if exists {
		return domain.ErrConnectionExists
	}
	return domain.ErrConnectionNotFound
}

func (r *ConnectionRepository) ListConnectionsForUser(ctx context.Context, userID string) ([]domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	conns := []domain.Connection{}
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connections: %w", err)
	}
	return conns, nil
}

func scanConnection(row pgx.Row) (*domain.Connection, error) {
	var c domain.Connection
	if err := row.Scan(&c.ID, &c.SenderID, &c.ReceiverID, &c.Status, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
