package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"droneMedicalDelivery/internal/fleet"
	"droneMedicalDelivery/models"
	"droneMedicalDelivery/repository"
)

type registerDroneRequest struct {
	SerialNumber    string   `json:"serial_number"`
	Model           string   `json:"model"`
	WeightLimit     float64  `json:"weight_limit"`
	BatteryCapacity *float64 `json:"battery_capacity,omitempty"`
	BaseLatitude    *float64 `json:"base_latitude,omitempty"`
	BaseLongitude   *float64 `json:"base_longitude,omitempty"`
}

func (a *API) registerDrone(w http.ResponseWriter, r *http.Request) {
	var req registerDroneRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeBadRequest(w, "Invalid request body")
		return
	}
	drone, err := a.fleet.Register(r.Context(), fleet.RegisterInput{
		SerialNumber:    req.SerialNumber,
		Model:           models.DroneModel(req.Model),
		WeightLimit:     req.WeightLimit,
		BatteryCapacity: req.BatteryCapacity,
		BaseLatitude:    req.BaseLatitude,
		BaseLongitude:   req.BaseLongitude,
	}, actorFrom(r))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, drone)
}

func (a *API) listDrones(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := repository.ListDronesParams{AfterSerial: q.Get("after")}
	if s := q.Get("status"); s != "" {
		status := models.DroneStatus(s)
		p.Status = &status
	}
	if m := q.Get("model"); m != "" {
		model := models.DroneModel(m)
		p.Model = &model
	}
	if s := q.Get("serial"); s != "" {
		p.SerialContains = &s
	}
	if n, err := strconv.Atoi(q.Get("page_size")); err == nil {
		p.PageSize = n
	}
	drones, err := a.fleet.List(r.Context(), p)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"drones": drones, "count": len(drones)})
}

func (a *API) getDrone(w http.ResponseWriter, r *http.Request) {
	drone, err := a.fleet.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, drone)
}

type loadDroneRequest struct {
	Items []loadItemRequest `json:"items"`
}

type loadItemRequest struct {
	MedicationID string `json:"medication_id"`
	Quantity     int    `json:"quantity"`
}

type loadDroneResponse struct {
	Drone       *models.Drone            `json:"drone"`
	Medications []models.DroneMedication `json:"medications"`
}

func (a *API) loadDrone(w http.ResponseWriter, r *http.Request) {
	var req loadDroneRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeBadRequest(w, "Invalid request body")
		return
	}
	items := make([]fleet.LoadItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, fleet.LoadItem{MedicationID: it.MedicationID, Quantity: it.Quantity})
	}
	drone, entries, err := a.fleet.Load(r.Context(), chi.URLParam(r, "id"), items, actorFrom(r))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, loadDroneResponse{Drone: drone, Medications: entries})
}

type updateStateRequest struct {
	Status string `json:"status"`
}

func (a *API) updateDroneState(w http.ResponseWriter, r *http.Request) {
	var req updateStateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeBadRequest(w, "Invalid request body")
		return
	}
	id := chi.URLParam(r, "id")
	if err := a.fleet.UpdateState(r.Context(), id, models.DroneStatus(req.Status), actorFrom(r)); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	drone, err := a.fleet.Get(r.Context(), id)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, drone)
}

type updateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (a *API) updateDroneLocation(w http.ResponseWriter, r *http.Request) {
	var req updateLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeBadRequest(w, "Invalid request body")
		return
	}
	drone, err := a.fleet.UpdateLocation(r.Context(), chi.URLParam(r, "id"), req.Latitude, req.Longitude, actorFrom(r))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, drone)
}

func (a *API) droneBattery(w http.ResponseWriter, r *http.Request) {
	status, err := a.fleet.CheckBattery(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, status)
}

// droneBatteryCheck records an attributed manual battery check through
// the monitor, unlike the plain read above.
func (a *API) droneBatteryCheck(w http.ResponseWriter, r *http.Request) {
	reading, err := a.monitor.CheckOne(r.Context(), chi.URLParam(r, "id"), actorFrom(r))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, reading)
}

func (a *API) droneMedications(w http.ResponseWriter, r *http.Request) {
	entries, err := a.fleet.Medications(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"medications": entries, "count": len(entries)})
}

func (a *API) nearestDrone(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("latitude"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("longitude"), 64)
	if errLat != nil || errLng != nil {
		a.writeBadRequest(w, "latitude and longitude query parameters are required")
		return
	}
	var capacity float64
	if c := q.Get("capacity"); c != "" {
		var err error
		if capacity, err = strconv.ParseFloat(c, 64); err != nil {
			a.writeBadRequest(w, "capacity must be a number")
			return
		}
	}
	drone, err := a.fleet.FindNearestAvailable(r.Context(), lat, lng, capacity)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if drone == nil {
		a.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "No available drone found"})
		return
	}
	a.writeJSON(w, http.StatusOK, drone)
}

func (a *API) deactivateDrone(w http.ResponseWriter, r *http.Request) {
	if err := a.fleet.Deactivate(r.Context(), chi.URLParam(r, "id"), actorFrom(r)); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusNoContent, nil)
}
