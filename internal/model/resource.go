package model

import (
	"time"

	"github.com/google/uuid"
)

type ResourceStatus string

const (
	ResourceActive   ResourceStatus = "active"
	ResourceInactive ResourceStatus = "inactive" // Excluded from allocation, kept for history
)

// Vehicle is a schedulable fleet asset. Vehicles are administratively managed
// and referenced by requisitions by id; they are deactivated rather than
// deleted so past requisitions keep a valid reference.
type Vehicle struct {
	ID                 uuid.UUID      `json:"id"`
	Name               string         `json:"name"`
	RegistrationNumber string         `json:"registration_number"`
	Type               string         `json:"type"`
	Capacity           int            `json:"capacity"`
	Status             ResourceStatus `json:"status"`
	CreatedAt          time.Time      `json:"created_at"`
}

// IsActive reports whether the vehicle may be assigned.
func (v *Vehicle) IsActive() bool {
	return v.Status == ResourceActive
}

// Driver is a schedulable fleet driver, conflict-checked exactly like a
// vehicle.
type Driver struct {
	ID          uuid.UUID      `json:"id"`
	FullName    string         `json:"full_name"`
	PhoneNumber string         `json:"phone_number"`
	Status      ResourceStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// IsActive reports whether the driver may be assigned.
func (d *Driver) IsActive() bool {
	return d.Status == ResourceActive
}
