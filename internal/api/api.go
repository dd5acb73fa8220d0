// Package api exposes the HTTP surface: authentication, the drone fleet
// operations, the medication catalog and the audit-log listing. Handlers
// are thin; domain rules live in the service packages.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"droneMedicalDelivery/internal/fleet"
	"droneMedicalDelivery/internal/meds"
	"droneMedicalDelivery/internal/users"
	"droneMedicalDelivery/repository"
)

type API struct {
	fleet     *fleet.Service
	monitor   *fleet.BatteryMonitor
	meds      *meds.Service
	users     *users.Service
	logs      repository.AuditLogRepositoryI
	logger    *zap.Logger
	jwtSecret string
}

func New(
	fleetSvc *fleet.Service,
	monitor *fleet.BatteryMonitor,
	medsSvc *meds.Service,
	usersSvc *users.Service,
	logs repository.AuditLogRepositoryI,
	logger *zap.Logger,
	jwtSecret string,
) *API {
	return &API{
		fleet:     fleetSvc,
		monitor:   monitor,
		meds:      medsSvc,
		users:     usersSvc,
		logs:      logs,
		logger:    logger,
		jwtSecret: jwtSecret,
	}
}

// Router assembles the full route tree.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public surface.
		r.Post("/auth/login", a.login)
		r.Post("/users", a.registerUser)

		// Everything else needs a token.
		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)

			r.Post("/auth/password", a.changePassword)

			r.Route("/drones", func(r chi.Router) {
				r.Post("/", a.registerDrone)
				r.Get("/", a.listDrones)
				r.Get("/nearest", a.nearestDrone)
				r.Get("/{id}", a.getDrone)
				r.Post("/{id}/load", a.loadDrone)
				r.Patch("/{id}/state", a.updateDroneState)
				r.Patch("/{id}/location", a.updateDroneLocation)
				r.Get("/{id}/battery", a.droneBattery)
				r.Post("/{id}/battery-check", a.droneBatteryCheck)
				r.Get("/{id}/medications", a.droneMedications)
				r.With(a.requireAdmin).Delete("/{id}", a.deactivateDrone)
			})

			r.Route("/medications", func(r chi.Router) {
				r.Post("/", a.createMedication)
				r.Get("/", a.listMedications)
				r.Get("/{id}", a.getMedication)
				r.With(a.requireAdmin).Delete("/{id}", a.deactivateMedication)
			})

			r.Group(func(r chi.Router) {
				r.Use(a.requireAdmin)
				r.Get("/users", a.listUsers)
				r.Get("/users/{id}", a.getUser)
				r.Delete("/users/{id}", a.deactivateUser)
				r.Get("/audit-logs", a.listAuditLogs)
			})
		})
	})
	return r
}
