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

type VehicleRepository struct {
	pool *pgxpool.Pool
}

func NewVehicleRepository(pool *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{pool: pool}
}

// Create inserts a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, v *model.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, name, registration_number, type, capacity, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := base.Conn(ctx, r.pool).QueryRow(
		ctx, query,
		v.ID,
		v.Name,
		v.RegistrationNumber,
		v.Type,
		v.Capacity,
		v.Status,
	).Scan(&v.CreatedAt)

	if err != nil {
		return fmt.Errorf("create vehicle: %w", err)
	}

	return nil
}

// Update rewrites a vehicle's editable fields.
func (r *VehicleRepository) Update(ctx context.Context, v *model.Vehicle) error {
	query := `
		UPDATE vehicles
		SET name = $1, registration_number = $2, type = $3, capacity = $4
		WHERE id = $5
	`

	result, err := base.Conn(ctx, r.pool).Exec(
		ctx, query,
		v.Name,
		v.RegistrationNumber,
		v.Type,
		v.Capacity,
		v.ID,
	)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("vehicle not found")
	}

	return nil
}

// SetStatus activates or deactivates a vehicle. Deactivation is the only way
// a vehicle leaves the pool; rows are never deleted.
func (r *VehicleRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.ResourceStatus) error {
	query := `UPDATE vehicles SET status = $1 WHERE id = $2`

	result, err := base.Conn(ctx, r.pool).Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("set vehicle status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("vehicle not found")
	}

	return nil
}

// GetByID fetches one vehicle, or nil when it does not exist.
func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	query := `
		SELECT id, name, registration_number, type, capacity, status, created_at
		FROM vehicles
		WHERE id = $1
	`

	v, err := scanVehicle(base.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle by id: %w", err)
	}

	return v, nil
}

// LockForAssignment fetches a vehicle with a row lock, serializing concurrent
// admin approvals against the same vehicle. Must run inside a transaction.
func (r *VehicleRepository) LockForAssignment(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	query := `
		SELECT id, name, registration_number, type, capacity, status, created_at
		FROM vehicles
		WHERE id = $1
		FOR UPDATE
	`

	v, err := scanVehicle(base.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock vehicle for assignment: %w", err)
	}

	return v, nil
}

// List returns every vehicle, ordered by display name.
func (r *VehicleRepository) List(ctx context.Context) ([]*model.Vehicle, error) {
	query := `
		SELECT id, name, registration_number, type, capacity, status, created_at
		FROM vehicles
		ORDER BY name
	`
	return r.list(ctx, query)
}

// ListActive returns vehicles eligible for allocation, ordered by display
// name.
func (r *VehicleRepository) ListActive(ctx context.Context) ([]*model.Vehicle, error) {
	query := `
		SELECT id, name, registration_number, type, capacity, status, created_at
		FROM vehicles
		WHERE status = 'active'
		ORDER BY name
	`
	return r.list(ctx, query)
}

func (r *VehicleRepository) list(ctx context.Context, query string) ([]*model.Vehicle, error) {
	rows, err := base.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*model.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}

	return vehicles, nil
}

func scanVehicle(row pgx.Row) (*model.Vehicle, error) {
	var v model.Vehicle
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.RegistrationNumber,
		&v.Type,
		&v.Capacity,
		&v.Status,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
