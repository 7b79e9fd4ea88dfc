package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/pranavdl/campus-transport/internal/apperr"
)

// ReviewAction is a stage decision.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

// allowTransition is the lifecycle as a directed graph. Terminal states have
// no outgoing edges.
var allowTransition = map[RequisitionStatus][]RequisitionStatus{
	StatusPendingHOD:   {StatusPendingAdmin, StatusRejected},
	StatusPendingAdmin: {StatusApproved, StatusRejected},
	StatusApproved:     {},
	StatusRejected:     {},
}

// reviewerFor maps each reviewable state to the single role allowed to decide
// it.
var reviewerFor = map[RequisitionStatus]Role{
	StatusPendingHOD:   RoleHOD,
	StatusPendingAdmin: RoleAdmin,
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to RequisitionStatus) bool {
	for _, s := range allowTransition[from] {
		if s == to {
			return true
		}
	}
	return false
}

// InitialStatus returns the state a fresh submission lands in. Privileged
// submitters (HOD, admin) have no first-stage reviewer above them and enter
// the admin queue directly.
func InitialStatus(privileged bool) RequisitionStatus {
	if privileged {
		return StatusPendingAdmin
	}
	return StatusPendingHOD
}

// ActionsFor returns the review actions the given role may take on a
// requisition in the given state. UI layers query this instead of re-deriving
// role logic.
func ActionsFor(role Role, status RequisitionStatus) []ReviewAction {
	if reviewerFor[status] != role {
		return nil
	}
	return []ReviewAction{ActionApprove, ActionReject}
}

// ApplyHODDecision advances a pending_hod requisition and stamps the HOD
// stage. The caller persists the result with a status guard so a concurrent
// decision cannot apply twice.
func ApplyHODDecision(r *Requisition, actorID uuid.UUID, action ReviewAction, remarks string, now time.Time) error {
	to := StatusPendingAdmin
	if action == ActionReject {
		to = StatusRejected
	}
	if r.Status != StatusPendingHOD || !CanTransition(r.Status, to) {
		return &apperr.StateError{
			Action:  string(action),
			Current: string(r.Status),
			Reason:  "HOD review requires state pending_hod",
		}
	}

	t := now
	r.Status = to
	r.HODID = &actorID
	r.HODActionAt = &t
	r.HODRemarks = remarks
	return nil
}

// ApplyAdminDecision advances a pending_admin requisition and stamps the admin
// stage. An approval binds the vehicle and driver together; both stay nil on
// every other path.
func ApplyAdminDecision(r *Requisition, actorID uuid.UUID, action ReviewAction, vehicleID, driverID *uuid.UUID, remarks string, now time.Time) error {
	to := StatusApproved
	if action == ActionReject {
		to = StatusRejected
	}
	if r.Status != StatusPendingAdmin || !CanTransition(r.Status, to) {
		return &apperr.StateError{
			Action:  string(action),
			Current: string(r.Status),
			Reason:  "admin review requires state pending_admin",
		}
	}
	if action == ActionApprove && (vehicleID == nil || driverID == nil) {
		return &apperr.StateError{
			Action:  string(action),
			Current: string(r.Status),
			Reason:  "approval requires a vehicle and driver pair",
		}
	}

	t := now
	r.Status = to
	r.AdminID = &actorID
	r.AdminActionAt = &t
	r.AdminRemarks = remarks
	if action == ActionApprove {
		r.AssignedVehicleID = vehicleID
		r.AssignedDriverID = driverID
	}
	return nil
}
