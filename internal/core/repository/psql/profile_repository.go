package psql

import (
	"context"
	"errors"
	"fmt"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `id, full_name, job_title, company, bio, location, hobbies, passions,
	people_to_meet, role_at_company, myers_briggs, enneagram, avatar_url, created_at, updated_at`

// ProfileRepository implements domain.ProfileRepository using PostgreSQL
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new PostgreSQL profile repository
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetProfile retrieves a profile by user ID
func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile creates the user's row if needed, locks it and applies fn
// inside one transaction, so concurrent partial updates never overwrite
// each other's fields.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, userID string, fn func(*domain.Profile)) (*domain.Profile, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin profile update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `INSERT INTO profiles (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, userID); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	p, err := scanProfile(tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1 FOR UPDATE`, userID))
	if err != nil {
		return nil, fmt.Errorf("lock profile: %w", err)
	}

	fn(p)

	query := `
		UPDATE profiles SET
			full_name = $2,
			job_title = $3,
			company = $4,
			bio = $5,
			location = $6,
			hobbies = $7,
			passions = $8,
			people_to_meet = $9,
			role_at_company = $10,
			myers_briggs = $11,
			enneagram = $12,
			avatar_url = $13,
			updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`

	hobbies := p.Hobbies
	if hobbies == nil {
		hobbies = []string{}
	}

	err = tx.QueryRow(ctx, query,
		p.ID, p.FullName, p.JobTitle, p.Company, p.Bio, p.Location, hobbies, p.Passions,
		p.PeopleToMeet, p.RoleAtCompany, p.MyersBriggs, p.Enneagram, p.AvatarURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit profile update: %w", err)
	}
	return p, nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.JobTitle,
		&p.Company,
		&p.Bio,
		&p.Location,
		&p.Hobbies,
		&p.Passions,
		&p.PeopleToMeet,
		&p.RoleAtCompany,
		&p.MyersBriggs,
		&p.Enneagram,
		&p.AvatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
