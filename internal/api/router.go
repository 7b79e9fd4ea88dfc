package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the HTTP surface. Everything under /api/v1 expects the
// actor identity headers.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/requisitions", func(r chi.Router) {
			r.Post("/", h.SubmitRequisition)
			r.Get("/", h.ListMyRequisitions)
			r.Get("/pending", h.ListPendingRequisitions)
			r.Get("/{id}", h.GetRequisition)
			r.Post("/{id}/hod-review", h.ReviewHOD)
			r.Post("/{id}/admin-review", h.ReviewAdmin)
		})

		r.Route("/allocation", func(r chi.Router) {
			r.Get("/vehicles", h.ListAssignableVehicles)
			r.Get("/drivers", h.ListAssignableDrivers)
		})

		r.Route("/fleet", func(r chi.Router) {
			r.Get("/snapshot", h.FleetSnapshot)

			r.Route("/vehicles", func(r chi.Router) {
				r.Post("/", h.AddVehicle)
				r.Get("/", h.ListVehicles)
				r.Put("/{id}", h.UpdateVehicle)
				r.Put("/{id}/status", h.SetVehicleStatus)
			})
			r.Route("/drivers", func(r chi.Router) {
				r.Post("/", h.AddDriver)
				r.Get("/", h.ListDrivers)
				r.Put("/{id}", h.UpdateDriver)
				r.Put("/{id}/status", h.SetDriverStatus)
			})
		})
	})

	return r
}
