package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pranavdl/campus-transport/internal/model"
	"github.com/pranavdl/campus-transport/internal/notify"
	"github.com/pranavdl/campus-transport/internal/repository"
	"github.com/pranavdl/campus-transport/internal/schedule"
)

// memRequisitions is an in-memory RequisitionStore mirroring the repository's
// guarded-update semantics, including ErrStatusChanged on a lost CAS.
// rawBookings lets a test plant stored rows with times no requisition value
// could produce, e.g. corrupted ones.
type memRequisitions struct {
	byID        map[uuid.UUID]*model.Requisition
	rawBookings []repository.AssignedBooking
}

func newMemRequisitions() *memRequisitions {
	return &memRequisitions{byID: make(map[uuid.UUID]*model.Requisition)}
}

func cloneReq(r *model.Requisition) *model.Requisition {
	c := *r
	return &c
}

func (m *memRequisitions) Create(_ context.Context, req *model.Requisition) error {
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	m.byID[req.ID] = cloneReq(req)
	return nil
}

func (m *memRequisitions) GetByID(_ context.Context, id uuid.UUID) (*model.Requisition, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneReq(r), nil
}

func (m *memRequisitions) ListByRequester(_ context.Context, requesterID uuid.UUID) ([]*model.Requisition, error) {
	var out []*model.Requisition
	for _, r := range m.byID {
		if r.RequesterID == requesterID {
			out = append(out, cloneReq(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRequisitions) ListByStatus(_ context.Context, status model.RequisitionStatus) ([]*model.Requisition, error) {
	var out []*model.Requisition
	for _, r := range m.byID {
		if r.Status == status {
			out = append(out, cloneReq(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memRequisitions) ApprovedOn(_ context.Context, date time.Time) ([]*model.Requisition, error) {
	var out []*model.Requisition
	for _, r := range m.byID {
		if r.IsApproved() && schedule.SameDay(r.PickupDate, date) {
			out = append(out, cloneReq(r))
		}
	}
	return out, nil
}

func (m *memRequisitions) AssignedBookingsOn(_ context.Context, date time.Time) ([]repository.AssignedBooking, error) {
	out := append([]repository.AssignedBooking{}, m.rawBookings...)
	for _, r := range m.byID {
		if r.IsApproved() && schedule.SameDay(r.PickupDate, date) {
			out = append(out, repository.AssignedBooking{
				VehicleID:  r.AssignedVehicleID,
				DriverID:   r.AssignedDriverID,
				PickupTime: r.PickupTime.String(),
				DropTime:   r.DropTime.String(),
			})
		}
	}
	return out, nil
}

func (m *memRequisitions) ApprovedBookingsForVehicle(ctx context.Context, date time.Time, vehicleID uuid.UUID) ([]schedule.Booking, error) {
	return m.bookings(ctx, date, func(r *model.Requisition) *uuid.UUID { return r.AssignedVehicleID }, vehicleID)
}

func (m *memRequisitions) ApprovedBookingsForDriver(ctx context.Context, date time.Time, driverID uuid.UUID) ([]schedule.Booking, error) {
	return m.bookings(ctx, date, func(r *model.Requisition) *uuid.UUID { return r.AssignedDriverID }, driverID)
}

func (m *memRequisitions) bookings(_ context.Context, date time.Time, idOf func(*model.Requisition) *uuid.UUID, want uuid.UUID) ([]schedule.Booking, error) {
	var out []schedule.Booking
	for _, r := range m.byID {
		id := idOf(r)
		if r.IsApproved() && schedule.SameDay(r.PickupDate, date) && id != nil && *id == want {
			out = append(out, schedule.Booking{
				Date:       date,
				PickupTime: r.PickupTime.String(),
				DropTime:   r.DropTime.String(),
			})
		}
	}
	return out, nil
}

func (m *memRequisitions) UpdateHODDecision(_ context.Context, req *model.Requisition) error {
	stored, ok := m.byID[req.ID]
	if !ok || stored.Status != model.StatusPendingHOD {
		return repository.ErrStatusChanged
	}
	req.UpdatedAt = time.Now()
	m.byID[req.ID] = cloneReq(req)
	return nil
}

func (m *memRequisitions) UpdateAdminDecision(_ context.Context, req *model.Requisition) error {
	stored, ok := m.byID[req.ID]
	if !ok || stored.Status != model.StatusPendingAdmin {
		return repository.ErrStatusChanged
	}
	req.UpdatedAt = time.Now()
	m.byID[req.ID] = cloneReq(req)
	return nil
}

func (m *memRequisitions) CountApprovedByDriver(_ context.Context) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int)
	for _, r := range m.byID {
		if r.IsApproved() && r.AssignedDriverID != nil {
			counts[*r.AssignedDriverID]++
		}
	}
	return counts, nil
}

type memVehicles struct {
	byID map[uuid.UUID]*model.Vehicle
}

func newMemVehicles() *memVehicles {
	return &memVehicles{byID: make(map[uuid.UUID]*model.Vehicle)}
}

func (m *memVehicles) Create(_ context.Context, v *model.Vehicle) error {
	m.byID[v.ID] = v
	return nil
}

func (m *memVehicles) Update(_ context.Context, v *model.Vehicle) error {
	m.byID[v.ID] = v
	return nil
}

func (m *memVehicles) SetStatus(_ context.Context, id uuid.UUID, status model.ResourceStatus) error {
	if v, ok := m.byID[id]; ok {
		v.Status = status
	}
	return nil
}

func (m *memVehicles) GetByID(_ context.Context, id uuid.UUID) (*model.Vehicle, error) {
	return m.byID[id], nil
}

func (m *memVehicles) LockForAssignment(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	return m.GetByID(ctx, id)
}

func (m *memVehicles) List(_ context.Context) ([]*model.Vehicle, error) {
	out := make([]*model.Vehicle, 0, len(m.byID))
	for _, v := range m.byID {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memVehicles) ListActive(ctx context.Context) ([]*model.Vehicle, error) {
	all, _ := m.List(ctx)
	out := make([]*model.Vehicle, 0, len(all))
	for _, v := range all {
		if v.IsActive() {
			out = append(out, v)
		}
	}
	return out, nil
}

type memDrivers struct {
	byID map[uuid.UUID]*model.Driver
}

func newMemDrivers() *memDrivers {
	return &memDrivers{byID: make(map[uuid.UUID]*model.Driver)}
}

func (m *memDrivers) Create(_ context.Context, d *model.Driver) error {
	m.byID[d.ID] = d
	return nil
}

func (m *memDrivers) Update(_ context.Context, d *model.Driver) error {
	m.byID[d.ID] = d
	return nil
}

func (m *memDrivers) SetStatus(_ context.Context, id uuid.UUID, status model.ResourceStatus) error {
	if d, ok := m.byID[id]; ok {
		d.Status = status
	}
	return nil
}

func (m *memDrivers) GetByID(_ context.Context, id uuid.UUID) (*model.Driver, error) {
	return m.byID[id], nil
}

func (m *memDrivers) LockForAssignment(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	return m.GetByID(ctx, id)
}

func (m *memDrivers) List(_ context.Context) ([]*model.Driver, error) {
	out := make([]*model.Driver, 0, len(m.byID))
	for _, d := range m.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (m *memDrivers) ListActive(ctx context.Context) ([]*model.Driver, error) {
	all, _ := m.List(ctx)
	out := make([]*model.Driver, 0, len(all))
	for _, d := range all {
		if d.IsActive() {
			out = append(out, d)
		}
	}
	return out, nil
}

type memProfiles struct {
	byID map[uuid.UUID]*model.Profile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{byID: make(map[uuid.UUID]*model.Profile)}
}

func (m *memProfiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	return m.byID[id], nil
}

// nopTx runs the function directly; the in-memory stores have no transactions.
type nopTx struct{}

func (nopTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// spyNotifier records dispatched approvals and optionally fails.
type spyNotifier struct {
	sent []notify.TripApproval
	err  error
}

func (s *spyNotifier) TripApproved(_ context.Context, approval notify.TripApproval) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, approval)
	return nil
}
