package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/pranavdl/campus-transport/internal/schedule"
)

type RequisitionStatus string

const (
	StatusPendingHOD   RequisitionStatus = "pending_hod"   // Waiting for first-stage (HOD) review
	StatusPendingAdmin RequisitionStatus = "pending_admin" // Waiting for admin review and assignment
	StatusApproved     RequisitionStatus = "approved"      // Terminal: vehicle and driver bound
	StatusRejected     RequisitionStatus = "rejected"      // Terminal
)

type TripCategory string

const (
	CategoryStaff    TripCategory = "staff"
	CategoryGuest    TripCategory = "guest"
	CategoryVIPGuest TripCategory = "vip_guest"
)

// RequiresGuestDetails reports whether the category needs a guest name and
// phone on the requisition.
func (c TripCategory) RequiresGuestDetails() bool {
	return c == CategoryGuest || c == CategoryVIPGuest
}

type TripPurpose string

const (
	PurposeMeeting       TripPurpose = "meeting"
	PurposeInHouseEvent  TripPurpose = "in_house_event"
	PurposeSession       TripPurpose = "session"
	PurposeWorkshop      TripPurpose = "workshop"
	PurposeVisit         TripPurpose = "visit"
	PurposeParticipation TripPurpose = "participation"
	PurposeOther         TripPurpose = "other"
)

// Purposes lists every accepted trip purpose.
var Purposes = []TripPurpose{
	PurposeMeeting,
	PurposeInHouseEvent,
	PurposeSession,
	PurposeWorkshop,
	PurposeVisit,
	PurposeParticipation,
	PurposeOther,
}

// Requisition is one travel request moving through the two-stage approval
// workflow. It is created by a requester and mutated only by the HOD and
// admin review actions; it is never deleted.
type Requisition struct {
	ID          uuid.UUID `json:"id"`
	RequesterID uuid.UUID `json:"requester_id"`

	PickupDate  time.Time          `json:"pickup_date"`
	PickupTime  schedule.TimeOfDay `json:"pickup_time"`
	DropTime    schedule.TimeOfDay `json:"drop_time"`
	Destination string             `json:"destination"`
	PickupPoint string             `json:"pickup_point"`

	Purpose            TripPurpose  `json:"purpose"`
	PurposeDescription string       `json:"purpose_description"`
	Category           TripCategory `json:"category"`
	GuestName          string       `json:"guest_name,omitempty"`
	GuestPhone         string       `json:"guest_phone,omitempty"`

	// Soft preference only; the admin assigns whatever is free.
	VehicleType string `json:"vehicle_type"`

	Status RequisitionStatus `json:"status"`

	AssignedVehicleID *uuid.UUID `json:"assigned_vehicle_id"`
	AssignedDriverID  *uuid.UUID `json:"assigned_driver_id"`

	HODID         *uuid.UUID `json:"hod_id"`
	HODActionAt   *time.Time `json:"hod_action_date"`
	HODRemarks    string     `json:"hod_remarks"`
	AdminID       *uuid.UUID `json:"admin_id"`
	AdminActionAt *time.Time `json:"admin_action_date"`
	AdminRemarks  string     `json:"admin_remarks"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Window returns the concrete trip window on the pickup date.
func (r *Requisition) Window() schedule.Window {
	return schedule.Window{
		Start: r.PickupTime.At(r.PickupDate),
		End:   r.DropTime.At(r.PickupDate),
	}
}

// IsTerminal reports whether the requisition reached a final state.
func (r *Requisition) IsTerminal() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}

// IsApproved reports whether the requisition was fully approved.
func (r *Requisition) IsApproved() bool {
	return r.Status == StatusApproved
}
