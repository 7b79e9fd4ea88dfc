package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pranavdl/campus-transport/internal/apperr"
	"github.com/pranavdl/campus-transport/internal/model"
	"github.com/pranavdl/campus-transport/internal/policy"
	"github.com/pranavdl/campus-transport/internal/schedule"
	"github.com/pranavdl/campus-transport/internal/service"
)

const dateLayout = "2006-01-02"

type Handlers struct {
	requisitions *service.RequisitionService
	allocation   *service.AllocationService
	fleet        *service.FleetService
	logger       *zap.Logger
}

func NewHandlers(
	requisitions *service.RequisitionService,
	allocation *service.AllocationService,
	fleet *service.FleetService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		requisitions: requisitions,
		allocation:   allocation,
		fleet:        fleet,
		logger:       logger,
	}
}

type submitRequest struct {
	PickupDate         string `json:"pickup_date"`
	PickupTime         string `json:"pickup_time"`
	DropTime           string `json:"drop_time"`
	Destination        string `json:"destination"`
	PickupPoint        string `json:"pickup_point"`
	Purpose            string `json:"purpose"`
	PurposeDescription string `json:"purpose_description"`
	Category           string `json:"category"`
	GuestName          string `json:"guest_name"`
	GuestPhone         string `json:"guest_phone"`
	VehicleType        string `json:"vehicle_type"`
}

func (h *Handlers) SubmitRequisition(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	draft, verr := draftFrom(req)
	if verr != nil {
		h.writeError(w, verr)
		return
	}

	created, err := h.requisitions.Submit(r.Context(), actor, draft)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

// draftFrom parses the wire strings into a structured draft. Malformed date
// or time values surface as field errors; missing ones are left zero for the
// policy to flag.
func draftFrom(req submitRequest) (policy.Draft, *apperr.ValidationError) {
	draft := policy.Draft{
		Destination:        req.Destination,
		PickupPoint:        req.PickupPoint,
		Purpose:            model.TripPurpose(req.Purpose),
		PurposeDescription: req.PurposeDescription,
		Category:           model.TripCategory(req.Category),
		GuestName:          req.GuestName,
		GuestPhone:         req.GuestPhone,
		VehicleType:        req.VehicleType,
	}

	verr := &apperr.ValidationError{}

	if req.PickupDate != "" {
		// Dates are UTC throughout: the store's DATE column scans back as UTC
		// midnight, so the boundary parses the same way.
		date, err := time.Parse(dateLayout, req.PickupDate)
		if err != nil {
			verr.Add("pickup_date", "must be formatted YYYY-MM-DD")
		} else {
			draft.PickupDate = date
		}
	}
	if req.PickupTime != "" {
		t, err := schedule.ParseTimeOfDay(req.PickupTime)
		if err != nil {
			verr.Add("pickup_time", "must be formatted HH:MM or HH:MM:SS")
		} else {
			draft.PickupTime = t
		}
	}
	if req.DropTime != "" {
		t, err := schedule.ParseTimeOfDay(req.DropTime)
		if err != nil {
			verr.Add("drop_time", "must be formatted HH:MM or HH:MM:SS")
		} else {
			draft.DropTime = t
		}
	}

	if verr.HasErrors() {
		return policy.Draft{}, verr
	}
	return draft, nil
}

func (h *Handlers) GetRequisition(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "invalid requisition id")
		return
	}

	req, err := h.requisitions.Get(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, requisitionView{
		Requisition: req,
		Actions:     model.ActionsFor(actor.Role, req.Status),
	})
}

// requisitionView attaches the actions the caller may take, so UI layers do
// not re-derive role logic.
type requisitionView struct {
	*model.Requisition
	Actions []model.ReviewAction `json:"available_actions,omitempty"`
}

func (h *Handlers) ListMyRequisitions(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	reqs, err := h.requisitions.ListMine(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, reqs)
}

func (h *Handlers) ListPendingRequisitions(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	reqs, err := h.requisitions.PendingQueue(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, reqs)
}

type hodReviewRequest struct {
	Action  string `json:"action"`
	Remarks string `json:"remarks"`
}

func (h *Handlers) ReviewHOD(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "invalid requisition id")
		return
	}

	var req hodReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	updated, err := h.requisitions.ReviewHOD(r.Context(), id, actor, model.ReviewAction(req.Action), req.Remarks)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

type adminReviewRequest struct {
	Action    string `json:"action"`
	VehicleID string `json:"vehicle_id"`
	DriverID  string `json:"driver_id"`
	Remarks   string `json:"remarks"`
}

func (h *Handlers) ReviewAdmin(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "invalid requisition id")
		return
	}

	var req adminReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	vehicleID, verr := optionalID("vehicle_id", req.VehicleID)
	driverID, verr2 := optionalID("driver_id", req.DriverID)
	if verr != nil || verr2 != nil {
		combined := &apperr.ValidationError{}
		if verr != nil {
			combined.Fields = append(combined.Fields, verr.Fields...)
		}
		if verr2 != nil {
			combined.Fields = append(combined.Fields, verr2.Fields...)
		}
		h.writeError(w, combined)
		return
	}

	updated, err := h.requisitions.ReviewAdmin(r.Context(), id, actor, model.ReviewAction(req.Action), vehicleID, driverID, req.Remarks)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

func optionalID(field, raw string) (*uuid.UUID, *apperr.ValidationError) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		verr := &apperr.ValidationError{}
		verr.Add(field, "must be a valid id")
		return nil, verr
	}
	return &id, nil
}

func (h *Handlers) ListAssignableVehicles(w http.ResponseWriter, r *http.Request) {
	h.listAssignable(w, r, func(date time.Time, pickup, drop schedule.TimeOfDay) (any, error) {
		return h.allocation.ListAssignableVehicles(r.Context(), date, pickup, drop)
	})
}

func (h *Handlers) ListAssignableDrivers(w http.ResponseWriter, r *http.Request) {
	h.listAssignable(w, r, func(date time.Time, pickup, drop schedule.TimeOfDay) (any, error) {
		return h.allocation.ListAssignableDrivers(r.Context(), date, pickup, drop)
	})
}

func (h *Handlers) listAssignable(w http.ResponseWriter, r *http.Request, list func(time.Time, schedule.TimeOfDay, schedule.TimeOfDay) (any, error)) {
	if _, err := actorFrom(r); err != nil {
		h.unauthorized(w, err)
		return
	}

	q := r.URL.Query()

	date, err := time.Parse(dateLayout, q.Get("date"))
	if err != nil {
		h.badRequest(w, "date must be formatted YYYY-MM-DD")
		return
	}
	pickup, err := schedule.ParseTimeOfDay(q.Get("pickup"))
	if err != nil {
		h.badRequest(w, "pickup must be formatted HH:MM or HH:MM:SS")
		return
	}
	drop, err := schedule.ParseTimeOfDay(q.Get("drop"))
	if err != nil {
		h.badRequest(w, "drop must be formatted HH:MM or HH:MM:SS")
		return
	}

	resources, err := list(date, pickup, drop)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resources)
}

func (h *Handlers) AddVehicle(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	var input service.VehicleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	v, err := h.fleet.AddVehicle(r.Context(), actor, input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, v)
}

func (h *Handlers) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "invalid vehicle id")
		return
	}

	var input service.VehicleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	v, err := h.fleet.UpdateVehicle(r.Context(), actor, id, input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) ListVehicles(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	vehicles, err := h.fleet.ListVehicles(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, vehicles)
}

func (h *Handlers) AddDriver(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	var input service.DriverInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	d, err := h.fleet.AddDriver(r.Context(), actor, input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, d)
}

func (h *Handlers) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "invalid driver id")
		return
	}

	var input service.DriverInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	d, err := h.fleet.UpdateDriver(r.Context(), actor, id, input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) ListDrivers(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	drivers, err := h.fleet.ListDrivers(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, drivers)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) SetVehicleStatus(w http.ResponseWriter, r *http.Request) {
	h.setResourceStatus(w, r, "vehicle", func(actor model.Actor, id uuid.UUID, status model.ResourceStatus) error {
		return h.fleet.SetVehicleStatus(r.Context(), actor, id, status)
	})
}

func (h *Handlers) SetDriverStatus(w http.ResponseWriter, r *http.Request) {
	h.setResourceStatus(w, r, "driver", func(actor model.Actor, id uuid.UUID, status model.ResourceStatus) error {
		return h.fleet.SetDriverStatus(r.Context(), actor, id, status)
	})
}

func (h *Handlers) setResourceStatus(w http.ResponseWriter, r *http.Request, kind string, set func(model.Actor, uuid.UUID, model.ResourceStatus) error) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "invalid "+kind+" id")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	if err := set(actor, id, model.ResourceStatus(req.Status)); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (h *Handlers) FleetSnapshot(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.unauthorized(w, err)
		return
	}

	snapshot, err := h.fleet.Snapshot(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handlers) unauthorized(w http.ResponseWriter, err error) {
	h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
}

func (h *Handlers) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	if verr, ok := apperr.AsValidation(err); ok {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation_failed",
			"fields": verr.Fields,
		})
		return
	}
	if serr, ok := apperr.AsState(err); ok {
		h.writeJSON(w, http.StatusConflict, map[string]string{
			"error":  "state_conflict",
			"detail": serr.Error(),
		})
		return
	}
	if errors.Is(err, apperr.ErrResourceNoLongerAvailable) {
		h.writeJSON(w, http.StatusConflict, map[string]string{
			"error":  "resource_no_longer_available",
			"detail": "the selected resource was booked concurrently; re-query availability and pick again",
		})
		return
	}
	if errors.Is(err, apperr.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
		return
	}
	if apperr.IsCollaborator(err) {
		h.logger.Error("Collaborator failure", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "store_unavailable"})
		return
	}

	h.logger.Error("Unhandled error", zap.Error(err))
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
}
