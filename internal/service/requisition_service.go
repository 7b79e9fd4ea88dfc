package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pranavdl/campus-transport/internal/apperr"
	"github.com/pranavdl/campus-transport/internal/metrics"
	"github.com/pranavdl/campus-transport/internal/model"
	"github.com/pranavdl/campus-transport/internal/notify"
	"github.com/pranavdl/campus-transport/internal/policy"
	"github.com/pranavdl/campus-transport/internal/repository"
	"github.com/pranavdl/campus-transport/internal/schedule"
)

// RequisitionService owns the requisition lifecycle: submission through the
// two review stages. All role gating happens here against the actor value the
// transport layer hands in.
type RequisitionService struct {
	requisitions RequisitionStore
	vehicles     VehicleStore
	drivers      DriverStore
	profiles     ProfileStore
	tx           Transactor
	policy       *policy.Policy
	notifier     notify.Notifier
	logger       *zap.Logger
	now          func() time.Time
}

func NewRequisitionService(
	requisitions RequisitionStore,
	vehicles VehicleStore,
	drivers DriverStore,
	profiles ProfileStore,
	tx Transactor,
	pol *policy.Policy,
	notifier notify.Notifier,
	logger *zap.Logger,
) *RequisitionService {
	return &RequisitionService{
		requisitions: requisitions,
		vehicles:     vehicles,
		drivers:      drivers,
		profiles:     profiles,
		tx:           tx,
		policy:       pol,
		notifier:     notifier,
		logger:       logger,
		now:          utcNow,
	}
}

// utcNow is the service clock. Pickup dates live as UTC midnights, so the
// same-day clamp and the booking window compare against a UTC instant.
func utcNow() time.Time {
	return time.Now().UTC()
}

// Submit validates a draft against the eligibility rules and creates the
// requisition in its initial state. Standard requesters enter the HOD queue;
// privileged submitters go straight to the admin queue.
func (s *RequisitionService) Submit(ctx context.Context, actor model.Actor, draft policy.Draft) (*model.Requisition, error) {
	if actor.IsZero() {
		return nil, fmt.Errorf("submit: actor is required")
	}

	privileged := actor.Role.Privileged()
	if err := s.policy.ValidateSubmission(draft, privileged, s.now()); err != nil {
		return nil, err
	}

	req := &model.Requisition{
		ID:                 uuid.New(),
		RequesterID:        actor.ID,
		PickupDate:         schedule.DateOf(draft.PickupDate),
		PickupTime:         draft.PickupTime,
		DropTime:           draft.DropTime,
		Destination:        draft.Destination,
		PickupPoint:        draft.PickupPoint,
		Purpose:            draft.Purpose,
		PurposeDescription: draft.PurposeDescription,
		Category:           draft.Category,
		GuestName:          draft.GuestName,
		GuestPhone:         draft.GuestPhone,
		VehicleType:        draft.VehicleType,
		Status:             model.InitialStatus(privileged),
	}

	if err := s.requisitions.Create(ctx, req); err != nil {
		return nil, apperr.Store(err)
	}

	metrics.SubmissionsTotal.Inc()
	s.logger.Info("Requisition submitted",
		zap.String("requisition_id", req.ID.String()),
		zap.String("requester_id", actor.ID.String()),
		zap.String("status", string(req.Status)),
		zap.String("pickup_date", req.PickupDate.Format("2006-01-02")),
	)

	return req, nil
}

// ReviewHOD applies a first-stage decision. Approval moves the requisition to
// the admin queue; rejection is terminal.
func (s *RequisitionService) ReviewHOD(ctx context.Context, id uuid.UUID, actor model.Actor, action model.ReviewAction, remarks string) (*model.Requisition, error) {
	if actor.IsZero() {
		return nil, fmt.Errorf("review hod: actor is required")
	}
	if err := checkAction(action); err != nil {
		return nil, err
	}
	if actor.Role != model.RoleHOD {
		return nil, &apperr.StateError{
			Action:  string(action),
			Current: "",
			Reason:  "only the HOD role reviews the first stage",
		}
	}

	req, err := s.requisitions.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if req == nil {
		return nil, apperr.ErrNotFound
	}

	if err := model.ApplyHODDecision(req, actor.ID, action, remarks, s.now()); err != nil {
		return nil, err
	}

	if err := s.requisitions.UpdateHODDecision(ctx, req); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, &apperr.StateError{
				Action:  string(action),
				Current: string(model.StatusPendingHOD),
				Reason:  "requisition was decided concurrently; re-fetch current state",
			}
		}
		return nil, apperr.Store(err)
	}

	metrics.DecisionsTotal.WithLabelValues("hod", string(action)).Inc()
	s.logger.Info("HOD decision recorded",
		zap.String("requisition_id", req.ID.String()),
		zap.String("hod_id", actor.ID.String()),
		zap.String("action", string(action)),
	)

	return req, nil
}

// ReviewAdmin applies the second-stage decision. An approval binds a vehicle
// and driver, and the availability of both is re-checked inside the same
// transaction that writes the assignment, so two concurrent approvals cannot
// double-book a resource. Losing that race surfaces
// apperr.ErrResourceNoLongerAvailable; the admin re-queries and picks again.
func (s *RequisitionService) ReviewAdmin(ctx context.Context, id uuid.UUID, actor model.Actor, action model.ReviewAction, vehicleID, driverID *uuid.UUID, remarks string) (*model.Requisition, error) {
	if actor.IsZero() {
		return nil, fmt.Errorf("review admin: actor is required")
	}
	if err := checkAction(action); err != nil {
		return nil, err
	}
	if actor.Role != model.RoleAdmin {
		return nil, &apperr.StateError{
			Action:  string(action),
			Current: "",
			Reason:  "only the admin role reviews the second stage",
		}
	}

	req, err := s.requisitions.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if req == nil {
		return nil, apperr.ErrNotFound
	}

	if action == model.ActionReject {
		if err := model.ApplyAdminDecision(req, actor.ID, action, nil, nil, remarks, s.now()); err != nil {
			return nil, err
		}
		if err := s.updateAdmin(ctx, req, action); err != nil {
			return nil, err
		}
		metrics.DecisionsTotal.WithLabelValues("admin", string(action)).Inc()
		s.logger.Info("Admin decision recorded",
			zap.String("requisition_id", req.ID.String()),
			zap.String("admin_id", actor.ID.String()),
			zap.String("action", string(action)),
		)
		return req, nil
	}

	verr := &apperr.ValidationError{}
	if vehicleID == nil {
		verr.Add("vehicle_id", "required for approval")
	}
	if driverID == nil {
		verr.Add("driver_id", "required for approval")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	var vehicle *model.Vehicle
	var driver *model.Driver

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Row locks on the resources serialize concurrent approvals against
		// the same vehicle or driver; the availability check below is then
		// authoritative for this transaction.
		vehicle, err = s.vehicles.LockForAssignment(ctx, *vehicleID)
		if err != nil {
			return apperr.Store(err)
		}
		driver, err = s.drivers.LockForAssignment(ctx, *driverID)
		if err != nil {
			return apperr.Store(err)
		}

		verr := &apperr.ValidationError{}
		if vehicle == nil {
			verr.Add("vehicle_id", "unknown vehicle")
		} else if !vehicle.IsActive() {
			verr.Add("vehicle_id", "vehicle is not active")
		}
		if driver == nil {
			verr.Add("driver_id", "unknown driver")
		} else if !driver.IsActive() {
			verr.Add("driver_id", "driver is not active")
		}
		if verr.HasErrors() {
			return verr
		}

		window := req.Window()
		now := s.now()

		vehicleBookings, err := s.requisitions.ApprovedBookingsForVehicle(ctx, req.PickupDate, vehicle.ID)
		if err != nil {
			return apperr.Store(err)
		}
		if !schedule.Available(window, now, vehicleBookings) {
			metrics.AssignmentConflictsTotal.Inc()
			return apperr.ErrResourceNoLongerAvailable
		}

		driverBookings, err := s.requisitions.ApprovedBookingsForDriver(ctx, req.PickupDate, driver.ID)
		if err != nil {
			return apperr.Store(err)
		}
		if !schedule.Available(window, now, driverBookings) {
			metrics.AssignmentConflictsTotal.Inc()
			return apperr.ErrResourceNoLongerAvailable
		}

		if err := model.ApplyAdminDecision(req, actor.ID, action, vehicleID, driverID, remarks, now); err != nil {
			return err
		}
		return s.updateAdmin(ctx, req, action)
	})
	if err != nil {
		return nil, err
	}

	metrics.DecisionsTotal.WithLabelValues("admin", string(action)).Inc()
	s.logger.Info("Requisition approved",
		zap.String("requisition_id", req.ID.String()),
		zap.String("admin_id", actor.ID.String()),
		zap.String("vehicle_id", vehicle.ID.String()),
		zap.String("driver_id", driver.ID.String()),
	)

	s.notifyApproval(ctx, req, vehicle, driver)

	return req, nil
}

func (s *RequisitionService) updateAdmin(ctx context.Context, req *model.Requisition, action model.ReviewAction) error {
	if err := s.requisitions.UpdateAdminDecision(ctx, req); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return &apperr.StateError{
				Action:  string(action),
				Current: string(model.StatusPendingAdmin),
				Reason:  "requisition was decided concurrently; re-fetch current state",
			}
		}
		return apperr.Store(err)
	}
	return nil
}

// notifyApproval dispatches the approval notification. A dispatch failure is
// logged and counted but never unwinds the completed transition.
func (s *RequisitionService) notifyApproval(ctx context.Context, req *model.Requisition, vehicle *model.Vehicle, driver *model.Driver) {
	approval := notify.TripApproval{
		VehicleName: vehicle.Name,
		DriverName:  driver.FullName,
		DriverPhone: driver.PhoneNumber,
		PickupTime:  req.PickupTime.String(),
	}

	requester, err := s.profiles.GetByID(ctx, req.RequesterID)
	if err != nil {
		s.logger.Warn("Could not load requester profile for notification", zap.Error(err))
	} else if requester != nil {
		approval.RecipientName = requester.FullName
		approval.RecipientPhone = requester.PhoneNumber
	}

	if err := s.notifier.TripApproved(ctx, approval); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("Approval notification failed",
			zap.String("requisition_id", req.ID.String()),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}

// Get returns one requisition. Requesters see only their own records;
// approver roles see everything.
func (s *RequisitionService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Requisition, error) {
	if actor.IsZero() {
		return nil, fmt.Errorf("get requisition: actor is required")
	}

	req, err := s.requisitions.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if req == nil {
		return nil, apperr.ErrNotFound
	}
	if !actor.Role.Privileged() && req.RequesterID != actor.ID {
		return nil, apperr.ErrNotFound
	}

	return req, nil
}

// ListMine returns the caller's own requisitions, newest first.
func (s *RequisitionService) ListMine(ctx context.Context, actor model.Actor) ([]*model.Requisition, error) {
	if actor.IsZero() {
		return nil, fmt.Errorf("list requisitions: actor is required")
	}

	reqs, err := s.requisitions.ListByRequester(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return reqs, nil
}

// PendingQueue returns the requisitions waiting on the caller's review stage.
func (s *RequisitionService) PendingQueue(ctx context.Context, actor model.Actor) ([]*model.Requisition, error) {
	if actor.IsZero() {
		return nil, fmt.Errorf("pending queue: actor is required")
	}

	var status model.RequisitionStatus
	switch actor.Role {
	case model.RoleHOD:
		status = model.StatusPendingHOD
	case model.RoleAdmin:
		status = model.StatusPendingAdmin
	default:
		return nil, &apperr.StateError{
			Action: "list_pending",
			Reason: "role has no review queue",
		}
	}

	reqs, err := s.requisitions.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return reqs, nil
}

func checkAction(action model.ReviewAction) error {
	if action != model.ActionApprove && action != model.ActionReject {
		verr := &apperr.ValidationError{}
		verr.Add("action", "must be approve or reject")
		return verr
	}
	return nil
}
