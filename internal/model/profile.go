package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleRequester Role = "requester"
	RoleHOD       Role = "hod"
	RoleAdmin     Role = "admin"
	RoleDriver    Role = "driver"
)

// Privileged reports whether the role may book starting today instead of
// tomorrow. HOD and admin actors skip the one-day lead the standard tier has.
func (r Role) Privileged() bool {
	return r == RoleHOD || r == RoleAdmin
}

// Profile is the stored identity of an actor: requester, approver, or driver.
// Department and college are opaque strings managed elsewhere.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	Department  string    `json:"department"`
	CollegeName string    `json:"college_name"`
	PhoneNumber string    `json:"phone_number"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// Actor is the session identity supplied by the external auth collaborator
// for the current caller. The core trusts the asserted role and passes the
// value explicitly into every operation instead of keeping ambient state.
type Actor struct {
	ID         uuid.UUID
	Role       Role
	Department string
}

// IsZero reports whether the actor is missing. Calling a core operation with
// a zero actor is a programming error, not a user fault.
func (a Actor) IsZero() bool {
	return a.ID == uuid.Nil
}
