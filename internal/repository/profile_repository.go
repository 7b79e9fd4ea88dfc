package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pranavdl/campus-transport/internal/model"
	"github.com/pranavdl/campus-transport/internal/repository/base"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Create inserts an actor profile. Profiles normally arrive through the auth
// collaborator's provisioning; this exists for administration and seeding.
func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, department, college_name, phone_number, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := base.Conn(ctx, r.pool).QueryRow(
		ctx, query,
		p.ID,
		p.FullName,
		p.Department,
		p.CollegeName,
		p.PhoneNumber,
		p.Role,
	).Scan(&p.CreatedAt)

	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}

// GetByID fetches one profile, or nil when it does not exist.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `
		SELECT id, full_name, department, college_name, phone_number, role, created_at
		FROM profiles
		WHERE id = $1
	`

	var p model.Profile
	err := base.Conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.FullName,
		&p.Department,
		&p.CollegeName,
		&p.PhoneNumber,
		&p.Role,
		&p.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by id: %w", err)
	}

	return &p, nil
}
