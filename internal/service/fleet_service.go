package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pranavdl/campus-transport/internal/apperr"
	"github.com/pranavdl/campus-transport/internal/model"
	"github.com/pranavdl/campus-transport/internal/schedule"
)

// VehicleInput carries the editable vehicle fields.
type VehicleInput struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
	Type               string `json:"type"`
	Capacity           int    `json:"capacity"`
}

// DriverInput carries the editable driver fields.
type DriverInput struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// FleetSnapshot summarizes today's fleet load for the transport panel.
type FleetSnapshot struct {
	Date             time.Time         `json:"date"`
	ActiveTrips      int               `json:"active_trips"`
	TotalVehicles    int               `json:"total_vehicles"`
	VehiclesInUse    int               `json:"vehicles_in_use"`
	DriverTripCounts map[uuid.UUID]int `json:"driver_trip_counts"`
}

// FleetService is the administrative surface for vehicles and drivers.
// Resources are deactivated, never deleted, so requisition history keeps
// valid references.
type FleetService struct {
	vehicles     VehicleStore
	drivers      DriverStore
	requisitions RequisitionStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewFleetService(
	vehicles VehicleStore,
	drivers DriverStore,
	requisitions RequisitionStore,
	logger *zap.Logger,
) *FleetService {
	return &FleetService{
		vehicles:     vehicles,
		drivers:      drivers,
		requisitions: requisitions,
		logger:       logger,
		now:          utcNow,
	}
}

// AddVehicle registers a new active vehicle.
func (s *FleetService) AddVehicle(ctx context.Context, actor model.Actor, input VehicleInput) (*model.Vehicle, error) {
	if err := requireAdmin(actor, "add vehicle"); err != nil {
		return nil, err
	}
	if input.Name == "" {
		verr := &apperr.ValidationError{}
		verr.Add("name", "required")
		return nil, verr
	}
	if input.Capacity <= 0 {
		input.Capacity = 4
	}

	v := &model.Vehicle{
		ID:                 uuid.New(),
		Name:               input.Name,
		RegistrationNumber: input.RegistrationNumber,
		Type:               input.Type,
		Capacity:           input.Capacity,
		Status:             model.ResourceActive,
	}
	if err := s.vehicles.Create(ctx, v); err != nil {
		return nil, apperr.Store(err)
	}

	s.logger.Info("Vehicle added",
		zap.String("vehicle_id", v.ID.String()),
		zap.String("name", v.Name),
	)
	return v, nil
}

// UpdateVehicle edits a vehicle's details.
func (s *FleetService) UpdateVehicle(ctx context.Context, actor model.Actor, id uuid.UUID, input VehicleInput) (*model.Vehicle, error) {
	if err := requireAdmin(actor, "update vehicle"); err != nil {
		return nil, err
	}

	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if v == nil {
		return nil, apperr.ErrNotFound
	}

	if input.Name != "" {
		v.Name = input.Name
	}
	v.RegistrationNumber = input.RegistrationNumber
	if input.Type != "" {
		v.Type = input.Type
	}
	if input.Capacity > 0 {
		v.Capacity = input.Capacity
	}

	if err := s.vehicles.Update(ctx, v); err != nil {
		return nil, apperr.Store(err)
	}
	return v, nil
}

// SetVehicleStatus activates or deactivates a vehicle.
func (s *FleetService) SetVehicleStatus(ctx context.Context, actor model.Actor, id uuid.UUID, status model.ResourceStatus) error {
	if err := requireAdmin(actor, "set vehicle status"); err != nil {
		return err
	}
	if status != model.ResourceActive && status != model.ResourceInactive {
		verr := &apperr.ValidationError{}
		verr.Add("status", "must be active or inactive")
		return verr
	}

	if err := s.vehicles.SetStatus(ctx, id, status); err != nil {
		return apperr.Store(err)
	}

	s.logger.Info("Vehicle status changed",
		zap.String("vehicle_id", id.String()),
		zap.String("status", string(status)),
	)
	return nil
}

// ListVehicles returns the whole fleet, ordered by name.
func (s *FleetService) ListVehicles(ctx context.Context, actor model.Actor) ([]*model.Vehicle, error) {
	if err := requireAdmin(actor, "list vehicles"); err != nil {
		return nil, err
	}
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return vehicles, nil
}

// AddDriver registers a new active driver.
func (s *FleetService) AddDriver(ctx context.Context, actor model.Actor, input DriverInput) (*model.Driver, error) {
	if err := requireAdmin(actor, "add driver"); err != nil {
		return nil, err
	}
	if input.FullName == "" {
		verr := &apperr.ValidationError{}
		verr.Add("full_name", "required")
		return nil, verr
	}

	d := &model.Driver{
		ID:          uuid.New(),
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
		Status:      model.ResourceActive,
	}
	if err := s.drivers.Create(ctx, d); err != nil {
		return nil, apperr.Store(err)
	}

	s.logger.Info("Driver added",
		zap.String("driver_id", d.ID.String()),
		zap.String("name", d.FullName),
	)
	return d, nil
}

// UpdateDriver edits a driver's details.
func (s *FleetService) UpdateDriver(ctx context.Context, actor model.Actor, id uuid.UUID, input DriverInput) (*model.Driver, error) {
	if err := requireAdmin(actor, "update driver"); err != nil {
		return nil, err
	}

	d, err := s.drivers.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}

	if input.FullName != "" {
		d.FullName = input.FullName
	}
	d.PhoneNumber = input.PhoneNumber

	if err := s.drivers.Update(ctx, d); err != nil {
		return nil, apperr.Store(err)
	}
	return d, nil
}

// SetDriverStatus activates or deactivates a driver.
func (s *FleetService) SetDriverStatus(ctx context.Context, actor model.Actor, id uuid.UUID, status model.ResourceStatus) error {
	if err := requireAdmin(actor, "set driver status"); err != nil {
		return err
	}
	if status != model.ResourceActive && status != model.ResourceInactive {
		verr := &apperr.ValidationError{}
		verr.Add("status", "must be active or inactive")
		return verr
	}

	if err := s.drivers.SetStatus(ctx, id, status); err != nil {
		return apperr.Store(err)
	}

	s.logger.Info("Driver status changed",
		zap.String("driver_id", id.String()),
		zap.String("status", string(status)),
	)
	return nil
}

// ListDrivers returns every driver, ordered by name.
func (s *FleetService) ListDrivers(ctx context.Context, actor model.Actor) ([]*model.Driver, error) {
	if err := requireAdmin(actor, "list drivers"); err != nil {
		return nil, err
	}
	drivers, err := s.drivers.List(ctx)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return drivers, nil
}

// Snapshot reports today's approved trip load and the historical per-driver
// trip totals for the transport panel.
func (s *FleetService) Snapshot(ctx context.Context, actor model.Actor) (*FleetSnapshot, error) {
	if err := requireAdmin(actor, "fleet snapshot"); err != nil {
		return nil, err
	}

	today := schedule.DateOf(s.now())

	trips, err := s.requisitions.ApprovedOn(ctx, today)
	if err != nil {
		return nil, apperr.Store(err)
	}
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, apperr.Store(err)
	}
	counts, err := s.requisitions.CountApprovedByDriver(ctx)
	if err != nil {
		return nil, apperr.Store(err)
	}

	inUse := make(map[uuid.UUID]bool)
	for _, t := range trips {
		if t.AssignedVehicleID != nil {
			inUse[*t.AssignedVehicleID] = true
		}
	}

	return &FleetSnapshot{
		Date:             today,
		ActiveTrips:      len(trips),
		TotalVehicles:    len(vehicles),
		VehiclesInUse:    len(inUse),
		DriverTripCounts: counts,
	}, nil
}

func requireAdmin(actor model.Actor, op string) error {
	if actor.IsZero() {
		return fmt.Errorf("%s: actor is required", op)
	}
	if actor.Role != model.RoleAdmin {
		return &apperr.StateError{
			Action: op,
			Reason: "only the admin role manages the fleet",
		}
	}
	return nil
}
