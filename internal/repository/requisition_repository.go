package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pranavdl/campus-transport/internal/model"
	"github.com/pranavdl/campus-transport/internal/repository/base"
	"github.com/pranavdl/campus-transport/internal/schedule"
)

// ErrStatusChanged signals that a guarded update matched no row: the
// requisition moved out of the expected state between read and write.
var ErrStatusChanged = errors.New("requisition status changed concurrently")

const requisitionColumns = `
	id, requester_id, pickup_date, pickup_time, drop_time,
	destination, pickup_point, purpose, purpose_description,
	category, guest_name, guest_phone, vehicle_type, status,
	assigned_vehicle_id, assigned_driver_id,
	hod_id, hod_action_date, hod_remarks,
	admin_id, admin_action_date, admin_remarks,
	created_at, updated_at`

type RequisitionRepository struct {
	pool *pgxpool.Pool
}

func NewRequisitionRepository(pool *pgxpool.Pool) *RequisitionRepository {
	return &RequisitionRepository{pool: pool}
}

// Create inserts a freshly submitted requisition.
func (r *RequisitionRepository) Create(ctx context.Context, req *model.Requisition) error {
	query := `
		INSERT INTO requisitions (
			id, requester_id, pickup_date, pickup_time, drop_time,
			destination, pickup_point, purpose, purpose_description,
			category, guest_name, guest_phone, vehicle_type, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	err := base.Conn(ctx, r.pool).QueryRow(
		ctx, query,
		req.ID,
		req.RequesterID,
		req.PickupDate,
		req.PickupTime.String(),
		req.DropTime.String(),
		req.Destination,
		req.PickupPoint,
		req.Purpose,
		req.PurposeDescription,
		req.Category,
		req.GuestName,
		req.GuestPhone,
		req.VehicleType,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create requisition: %w", err)
	}

	return nil
}

// GetByID fetches one requisition, or nil when it does not exist.
func (r *RequisitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Requisition, error) {
	query := `SELECT ` + requisitionColumns + ` FROM requisitions WHERE id = $1`

	req, err := scanRequisition(base.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get requisition by id: %w", err)
	}

	return req, nil
}

// ListByRequester returns a requester's own requisitions, newest first.
func (r *RequisitionRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*model.Requisition, error) {
	query := `SELECT ` + requisitionColumns + `
		FROM requisitions
		WHERE requester_id = $1
		ORDER BY created_at DESC`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list requisitions by requester: %w", err)
	}
	defer rows.Close()

	return collectRequisitions(rows)
}

// ListByStatus returns the review queue for a stage, oldest first.
func (r *RequisitionRepository) ListByStatus(ctx context.Context, status model.RequisitionStatus) ([]*model.Requisition, error) {
	query := `SELECT ` + requisitionColumns + `
		FROM requisitions
		WHERE status = $1
		ORDER BY created_at ASC`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list requisitions by status: %w", err)
	}
	defer rows.Close()

	return collectRequisitions(rows)
}

// ApprovedOn returns every approved requisition with the given pickup date.
func (r *RequisitionRepository) ApprovedOn(ctx context.Context, date time.Time) ([]*model.Requisition, error) {
	query := `SELECT ` + requisitionColumns + `
		FROM requisitions
		WHERE status = 'approved' AND pickup_date = $1
		ORDER BY pickup_time ASC`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list approved requisitions on date: %w", err)
	}
	defer rows.Close()

	return collectRequisitions(rows)
}

// ApprovedBookingsForVehicle returns the stored trip windows of a vehicle's
// approved requisitions on a date. Times come back as the raw stored strings;
// the conflict detector owns their parsing.
func (r *RequisitionRepository) ApprovedBookingsForVehicle(ctx context.Context, date time.Time, vehicleID uuid.UUID) ([]schedule.Booking, error) {
	query := `
		SELECT pickup_time, drop_time
		FROM requisitions
		WHERE status = 'approved' AND pickup_date = $1 AND assigned_vehicle_id = $2
	`
	return r.bookings(ctx, query, date, vehicleID)
}

// ApprovedBookingsForDriver returns the stored trip windows of a driver's
// approved requisitions on a date.
func (r *RequisitionRepository) ApprovedBookingsForDriver(ctx context.Context, date time.Time, driverID uuid.UUID) ([]schedule.Booking, error) {
	query := `
		SELECT pickup_time, drop_time
		FROM requisitions
		WHERE status = 'approved' AND pickup_date = $1 AND assigned_driver_id = $2
	`
	return r.bookings(ctx, query, date, driverID)
}

// AssignedBooking is one approved trip window on a date together with the
// resources it occupies. Times are the raw stored strings; the conflict
// detector owns their parsing, so one corrupt row sidelines its own resource
// instead of failing the query.
type AssignedBooking struct {
	VehicleID  *uuid.UUID
	DriverID   *uuid.UUID
	PickupTime string
	DropTime   string
}

// AssignedBookingsOn returns every approved trip window on a date with its
// assigned vehicle and driver ids.
func (r *RequisitionRepository) AssignedBookingsOn(ctx context.Context, date time.Time) ([]AssignedBooking, error) {
	query := `
		SELECT assigned_vehicle_id, assigned_driver_id, pickup_time, drop_time
		FROM requisitions
		WHERE status = 'approved' AND pickup_date = $1
	`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list assigned bookings on date: %w", err)
	}
	defer rows.Close()

	var bookings []AssignedBooking
	for rows.Next() {
		var b AssignedBooking
		if err := rows.Scan(&b.VehicleID, &b.DriverID, &b.PickupTime, &b.DropTime); err != nil {
			return nil, fmt.Errorf("scan assigned booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assigned bookings: %w", err)
	}

	return bookings, nil
}

func (r *RequisitionRepository) bookings(ctx context.Context, query string, date time.Time, resourceID uuid.UUID) ([]schedule.Booking, error) {
	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, date, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list approved bookings: %w", err)
	}
	defer rows.Close()

	var bookings []schedule.Booking
	for rows.Next() {
		b := schedule.Booking{Date: date}
		if err := rows.Scan(&b.PickupTime, &b.DropTime); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

// UpdateHODDecision persists the HOD stage result. The status guard makes the
// write a compare-and-swap: if the requisition already left pending_hod the
// update matches nothing and ErrStatusChanged is returned.
func (r *RequisitionRepository) UpdateHODDecision(ctx context.Context, req *model.Requisition) error {
	query := `
		UPDATE requisitions
		SET status = $1, hod_id = $2, hod_action_date = $3, hod_remarks = $4, updated_at = now()
		WHERE id = $5 AND status = 'pending_hod'
	`

	result, err := base.Conn(ctx, r.pool).Exec(
		ctx, query,
		req.Status,
		req.HODID,
		req.HODActionAt,
		req.HODRemarks,
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("update hod decision: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrStatusChanged
	}

	return nil
}

// UpdateAdminDecision persists the admin stage result, including the resource
// assignment on approval, guarded on status = pending_admin.
func (r *RequisitionRepository) UpdateAdminDecision(ctx context.Context, req *model.Requisition) error {
	query := `
		UPDATE requisitions
		SET status = $1, admin_id = $2, admin_action_date = $3, admin_remarks = $4,
		    assigned_vehicle_id = $5, assigned_driver_id = $6, updated_at = now()
		WHERE id = $7 AND status = 'pending_admin'
	`

	result, err := base.Conn(ctx, r.pool).Exec(
		ctx, query,
		req.Status,
		req.AdminID,
		req.AdminActionAt,
		req.AdminRemarks,
		req.AssignedVehicleID,
		req.AssignedDriverID,
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("update admin decision: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrStatusChanged
	}

	return nil
}

// CountApprovedByDriver returns each driver's historical approved trip count.
func (r *RequisitionRepository) CountApprovedByDriver(ctx context.Context) (map[uuid.UUID]int, error) {
	query := `
		SELECT assigned_driver_id, COUNT(*)
		FROM requisitions
		WHERE status = 'approved' AND assigned_driver_id IS NOT NULL
		GROUP BY assigned_driver_id
	`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count approved trips by driver: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var driverID uuid.UUID
		var count int
		if err := rows.Scan(&driverID, &count); err != nil {
			return nil, fmt.Errorf("scan driver trip count: %w", err)
		}
		counts[driverID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate driver trip counts: %w", err)
	}

	return counts, nil
}

func collectRequisitions(rows pgx.Rows) ([]*model.Requisition, error) {
	var reqs []*model.Requisition
	for rows.Next() {
		req, err := scanRequisition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan requisition: %w", err)
		}
		reqs = append(reqs, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requisitions: %w", err)
	}

	return reqs, nil
}

func scanRequisition(row pgx.Row) (*model.Requisition, error) {
	var req model.Requisition
	var pickupTime, dropTime string

	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.PickupDate,
		&pickupTime,
		&dropTime,
		&req.Destination,
		&req.PickupPoint,
		&req.Purpose,
		&req.PurposeDescription,
		&req.Category,
		&req.GuestName,
		&req.GuestPhone,
		&req.VehicleType,
		&req.Status,
		&req.AssignedVehicleID,
		&req.AssignedDriverID,
		&req.HODID,
		&req.HODActionAt,
		&req.HODRemarks,
		&req.AdminID,
		&req.AdminActionAt,
		&req.AdminRemarks,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if req.PickupTime, err = schedule.ParseTimeOfDay(pickupTime); err != nil {
		return nil, fmt.Errorf("requisition %s: %w", req.ID, err)
	}
	if req.DropTime, err = schedule.ParseTimeOfDay(dropTime); err != nil {
		return nil, fmt.Errorf("requisition %s: %w", req.ID, err)
	}

	return &req, nil
}
