package policy

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pranavdl/campus-transport/internal/apperr"
	"github.com/pranavdl/campus-transport/internal/model"
	"github.com/pranavdl/campus-transport/internal/schedule"
)

// BookingHorizonDays caps how far ahead anyone may book. This also bounds the
// conflict-search horizon: no approved booking further out ever matters.
const BookingHorizonDays = 3

// Draft is a submission before it becomes a requisition.
type Draft struct {
	PickupDate  time.Time          `json:"pickup_date"`
	PickupTime  schedule.TimeOfDay `json:"pickup_time"`
	DropTime    schedule.TimeOfDay `json:"drop_time"`
	Destination string             `json:"destination" validate:"required"`
	PickupPoint string             `json:"pickup_point" validate:"required"`

	Purpose            model.TripPurpose  `json:"purpose" validate:"required,oneof=meeting in_house_event session workshop visit participation other"`
	PurposeDescription string             `json:"purpose_description"`
	Category           model.TripCategory `json:"category" validate:"required,oneof=staff guest vip_guest"`
	GuestName          string             `json:"guest_name"`
	GuestPhone         string             `json:"guest_phone"`

	VehicleType string `json:"vehicle_type"`
}

// Policy holds the eligibility rules gating submission. It is pure: every
// check takes the current instant as an argument.
type Policy struct {
	// MinTripDuration is the smallest accepted pickup-to-drop gap. Zero means
	// any strictly positive duration passes; the historical rule of 60
	// minutes is a configuration choice, not a constant.
	MinTripDuration time.Duration

	validate *validator.Validate
}

func New(minTripDuration time.Duration) *Policy {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return &Policy{MinTripDuration: minTripDuration, validate: v}
}

// Window returns the allowed booking dates for an actor. Privileged actors
// (HOD, admin) may book starting today; standard requesters start tomorrow.
// Everyone caps at today plus the booking horizon.
func (p *Policy) Window(privileged bool, today time.Time) (minDate, maxDate time.Time) {
	day := schedule.DateOf(today)
	minDate = day
	if !privileged {
		minDate = schedule.AddDays(day, 1)
	}
	maxDate = schedule.AddDays(day, BookingHorizonDays)
	return minDate, maxDate
}

// ValidateDuration reports whether the drop time is acceptably after the
// pickup time.
func (p *Policy) ValidateDuration(pickup, drop schedule.TimeOfDay) bool {
	d := drop.Sub(pickup)
	if d <= 0 {
		return false
	}
	return d >= p.MinTripDuration
}

// ValidateSubmission checks a draft against the required-field, date-window
// and duration rules. It returns a ValidationError enumerating every failing
// field, or nil when the draft is acceptable.
func (p *Policy) ValidateSubmission(d Draft, privileged bool, now time.Time) error {
	verr := &apperr.ValidationError{}

	if err := p.validate.Struct(d); err != nil {
		ferrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validate draft: %w", err)
		}
		for _, fe := range ferrs {
			verr.Add(fe.Field(), reasonFor(fe))
		}
	}

	if d.PickupDate.IsZero() {
		verr.Add("pickup_date", "required")
	} else {
		minDate, maxDate := p.Window(privileged, now)
		date := schedule.DateOf(d.PickupDate)
		if date.Before(minDate) {
			verr.Add("pickup_date", fmt.Sprintf("earliest allowed date is %s", minDate.Format("2006-01-02")))
		}
		if date.After(maxDate) {
			verr.Add("pickup_date", fmt.Sprintf("latest allowed date is %s", maxDate.Format("2006-01-02")))
		}
	}

	if d.PickupTime.IsZero() {
		verr.Add("pickup_time", "required")
	}
	if d.DropTime.IsZero() {
		verr.Add("drop_time", "required")
	}
	if !d.PickupTime.IsZero() && !d.DropTime.IsZero() {
		if !p.ValidateDuration(d.PickupTime, d.DropTime) {
			verr.Add("drop_time", p.durationReason())
		}
	}

	if d.Category.RequiresGuestDetails() {
		if d.GuestName == "" {
			verr.Add("guest_name", "required for guest categories")
		}
		if d.GuestPhone == "" {
			verr.Add("guest_phone", "required for guest categories")
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (p *Policy) durationReason() string {
	if p.MinTripDuration > 0 {
		return fmt.Sprintf("must be at least %d minutes after pickup time", int(p.MinTripDuration.Minutes()))
	}
	return "must be after pickup time"
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "invalid"
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
