package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pranavdl/campus-transport/internal/model"
	"github.com/pranavdl/campus-transport/internal/repository"
	"github.com/pranavdl/campus-transport/internal/schedule"
)

// RequisitionStore is the persistence surface the workflow needs. The pgx
// repository satisfies it; tests swap in an in-memory fake.
type RequisitionStore interface {
	Create(ctx context.Context, req *model.Requisition) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Requisition, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*model.Requisition, error)
	ListByStatus(ctx context.Context, status model.RequisitionStatus) ([]*model.Requisition, error)
	ApprovedOn(ctx context.Context, date time.Time) ([]*model.Requisition, error)
	AssignedBookingsOn(ctx context.Context, date time.Time) ([]repository.AssignedBooking, error)
	ApprovedBookingsForVehicle(ctx context.Context, date time.Time, vehicleID uuid.UUID) ([]schedule.Booking, error)
	ApprovedBookingsForDriver(ctx context.Context, date time.Time, driverID uuid.UUID) ([]schedule.Booking, error)
	UpdateHODDecision(ctx context.Context, req *model.Requisition) error
	UpdateAdminDecision(ctx context.Context, req *model.Requisition) error
	CountApprovedByDriver(ctx context.Context) (map[uuid.UUID]int, error)
}

type VehicleStore interface {
	Create(ctx context.Context, v *model.Vehicle) error
	Update(ctx context.Context, v *model.Vehicle) error
	SetStatus(ctx context.Context, id uuid.UUID, status model.ResourceStatus) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	LockForAssignment(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	List(ctx context.Context) ([]*model.Vehicle, error)
	ListActive(ctx context.Context) ([]*model.Vehicle, error)
}

type DriverStore interface {
	Create(ctx context.Context, d *model.Driver) error
	Update(ctx context.Context, d *model.Driver) error
	SetStatus(ctx context.Context, id uuid.UUID, status model.ResourceStatus) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Driver, error)
	LockForAssignment(ctx context.Context, id uuid.UUID) (*model.Driver, error)
	List(ctx context.Context) ([]*model.Driver, error)
	ListActive(ctx context.Context) ([]*model.Driver, error)
}

type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// Transactor runs a function as one atomic unit against the backing store.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
