package notify

import (
	"context"
	"fmt"
)

// TripApproval is everything the dispatcher needs to tell a requester their
// trip is booked.
type TripApproval struct {
	RecipientName  string
	RecipientPhone string
	VehicleName    string
	DriverName     string
	DriverPhone    string
	PickupTime     string
}

// Message renders the approval text sent to the requester.
func (a TripApproval) Message() string {
	return fmt.Sprintf(
		"Travel Requisition Approved!\nRequester: %s (%s)\nVehicle: %s\nDriver: %s (%s)\nPickup: %s",
		a.RecipientName, a.RecipientPhone, a.VehicleName, a.DriverName, a.DriverPhone, a.PickupTime,
	)
}

// Notifier dispatches approval notifications. It is invoked exactly once per
// successful admin approval; a dispatch failure never rolls the approval
// back.
type Notifier interface {
	TripApproved(ctx context.Context, approval TripApproval) error
}

// Nop is the dispatcher used when no notification channel is configured.
type Nop struct{}

func (Nop) TripApproved(context.Context, TripApproval) error { return nil }
