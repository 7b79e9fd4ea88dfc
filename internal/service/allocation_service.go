package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pranavdl/campus-transport/internal/apperr"
	"github.com/pranavdl/campus-transport/internal/model"
	"github.com/pranavdl/campus-transport/internal/repository"
	"github.com/pranavdl/campus-transport/internal/schedule"
)

// AllocationService answers "which resources are free for this window". The
// answer is advisory: it is re-checked authoritatively inside the approve
// transition, so these queries run unsynchronized and must never be cached
// across a review session.
type AllocationService struct {
	requisitions RequisitionStore
	vehicles     VehicleStore
	drivers      DriverStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewAllocationService(
	requisitions RequisitionStore,
	vehicles VehicleStore,
	drivers DriverStore,
	logger *zap.Logger,
) *AllocationService {
	return &AllocationService{
		requisitions: requisitions,
		vehicles:     vehicles,
		drivers:      drivers,
		logger:       logger,
		now:          utcNow,
	}
}

// ListAssignableVehicles returns the active vehicles free for the proposed
// window, ordered by display name.
func (s *AllocationService) ListAssignableVehicles(ctx context.Context, date time.Time, pickup, drop schedule.TimeOfDay) ([]*model.Vehicle, error) {
	window, err := proposedWindow(date, pickup, drop)
	if err != nil {
		return nil, err
	}

	active, err := s.vehicles.ListActive(ctx)
	if err != nil {
		return nil, apperr.Store(err)
	}

	booked, err := s.bookingsByResource(ctx, schedule.DateOf(date), func(b repository.AssignedBooking) *uuid.UUID {
		return b.VehicleID
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	free := make([]*model.Vehicle, 0, len(active))
	for _, v := range active {
		if schedule.Available(window, now, booked[v.ID]) {
			free = append(free, v)
		}
	}

	return free, nil
}

// ListAssignableDrivers returns the active drivers free for the proposed
// window, ordered by display name.
func (s *AllocationService) ListAssignableDrivers(ctx context.Context, date time.Time, pickup, drop schedule.TimeOfDay) ([]*model.Driver, error) {
	window, err := proposedWindow(date, pickup, drop)
	if err != nil {
		return nil, err
	}

	active, err := s.drivers.ListActive(ctx)
	if err != nil {
		return nil, apperr.Store(err)
	}

	booked, err := s.bookingsByResource(ctx, schedule.DateOf(date), func(b repository.AssignedBooking) *uuid.UUID {
		return b.DriverID
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	free := make([]*model.Driver, 0, len(active))
	for _, d := range active {
		if schedule.Available(window, now, booked[d.ID]) {
			free = append(free, d)
		}
	}

	return free, nil
}

// bookingsByResource buckets the day's approved trip windows by assigned
// resource id. Times stay as the raw stored strings so a corrupt value makes
// the conflict detector read that one resource as unavailable instead of
// failing the whole listing.
func (s *AllocationService) bookingsByResource(ctx context.Context, date time.Time, resourceID func(repository.AssignedBooking) *uuid.UUID) (map[uuid.UUID][]schedule.Booking, error) {
	assigned, err := s.requisitions.AssignedBookingsOn(ctx, date)
	if err != nil {
		return nil, apperr.Store(err)
	}

	booked := make(map[uuid.UUID][]schedule.Booking)
	for _, b := range assigned {
		id := resourceID(b)
		if id == nil {
			continue
		}
		booked[*id] = append(booked[*id], schedule.Booking{
			Date:       date,
			PickupTime: b.PickupTime,
			DropTime:   b.DropTime,
		})
	}

	return booked, nil
}

func proposedWindow(date time.Time, pickup, drop schedule.TimeOfDay) (schedule.Window, error) {
	if date.IsZero() {
		return schedule.Window{}, fmt.Errorf("allocation query: date is required")
	}
	if !pickup.Before(drop) {
		verr := &apperr.ValidationError{}
		verr.Add("drop_time", "must be after pickup time")
		return schedule.Window{}, verr
	}

	day := schedule.DateOf(date)
	return schedule.Window{Start: pickup.At(day), End: drop.At(day)}, nil
}
