package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pranavdl/campus-transport/internal/model"
	"github.com/pranavdl/campus-transport/internal/repository/base"
)

type DriverRepository struct {
	pool *pgxpool.Pool
}

func NewDriverRepository(pool *pgxpool.Pool) *DriverRepository {
	return &DriverRepository{pool: pool}
}

// Create inserts a new driver.
func (r *DriverRepository) Create(ctx context.Context, d *model.Driver) error {
	query := `
		INSERT INTO drivers (id, full_name, phone_number, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := base.Conn(ctx, r.pool).QueryRow(
		ctx, query,
		d.ID,
		d.FullName,
		d.PhoneNumber,
		d.Status,
	).Scan(&d.CreatedAt)

	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}

	return nil
}

// Update rewrites a driver's editable fields.
func (r *DriverRepository) Update(ctx context.Context, d *model.Driver) error {
	query := `
		UPDATE drivers
		SET full_name = $1, phone_number = $2
		WHERE id = $3
	`

	result, err := base.Conn(ctx, r.pool).Exec(ctx, query, d.FullName, d.PhoneNumber, d.ID)
	if err != nil {
		return fmt.Errorf("update driver: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("driver not found")
	}

	return nil
}

// SetStatus activates or deactivates a driver.
func (r *DriverRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.ResourceStatus) error {
	query := `UPDATE drivers SET status = $1 WHERE id = $2`

	result, err := base.Conn(ctx, r.pool).Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("set driver status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("driver not found")
	}

	return nil
}

// GetByID fetches one driver, or nil when it does not exist.
func (r *DriverRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	query := `
		SELECT id, full_name, phone_number, status, created_at
		FROM drivers
		WHERE id = $1
	`

	d, err := scanDriver(base.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver by id: %w", err)
	}

	return d, nil
}

// LockForAssignment fetches a driver with a row lock, serializing concurrent
// admin approvals against the same driver. Must run inside a transaction.
func (r *DriverRepository) LockForAssignment(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	query := `
		SELECT id, full_name, phone_number, status, created_at
		FROM drivers
		WHERE id = $1
		FOR UPDATE
	`

	d, err := scanDriver(base.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock driver for assignment: %w", err)
	}

	return d, nil
}

// List returns every driver, ordered by display name.
func (r *DriverRepository) List(ctx context.Context) ([]*model.Driver, error) {
	query := `
		SELECT id, full_name, phone_number, status, created_at
		FROM drivers
		ORDER BY full_name
	`
	return r.list(ctx, query)
}

// ListActive returns drivers eligible for allocation, ordered by display
// name.
func (r *DriverRepository) ListActive(ctx context.Context) ([]*model.Driver, error) {
	query := `
		SELECT id, full_name, phone_number, status, created_at
		FROM drivers
		WHERE status = 'active'
		ORDER BY full_name
	`
	return r.list(ctx, query)
}

func (r *DriverRepository) list(ctx context.Context, query string) ([]*model.Driver, error) {
	rows, err := base.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []*model.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drivers: %w", err)
	}

	return drivers, nil
}

func scanDriver(row pgx.Row) (*model.Driver, error) {
	var d model.Driver
	err := row.Scan(
		&d.ID,
		&d.FullName,
		&d.PhoneNumber,
		&d.Status,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
