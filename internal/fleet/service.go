// Package fleet implements the drone state-and-load management core:
// registration bounded by model weight classes, all-or-nothing loading,
// the status transition gate, battery checks and nearest-drone search.
package fleet

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"droneMedicalDelivery/internal/apperr"
	"droneMedicalDelivery/internal/audit"
	"droneMedicalDelivery/internal/geo"
	"droneMedicalDelivery/models"
	"droneMedicalDelivery/repository"
)

// Service orchestrates drone lifecycle operations. All collaborators are
// passed in explicitly; there is no ambient registry.
type Service struct {
	drones repository.DroneRepositoryI
	meds   repository.MedicationRepositoryI
	loads  repository.DroneMedicationRepositoryI
	sink   audit.Sink
	logger *zap.Logger
}

func NewService(
	drones repository.DroneRepositoryI,
	meds repository.MedicationRepositoryI,
	loads repository.DroneMedicationRepositoryI,
	sink audit.Sink,
	logger *zap.Logger,
) *Service {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Service{drones: drones, meds: meds, loads: loads, sink: sink, logger: logger}
}

// RegisterInput describes a drone to register. Battery and base location
// are optional; battery defaults to 100.
type RegisterInput struct {
	SerialNumber    string
	Model           models.DroneModel
	WeightLimit     float64
	BatteryCapacity *float64
	BaseLatitude    *float64
	BaseLongitude   *float64
}

// Register creates a new drone in IDLE with zero load.
func (s *Service) Register(ctx context.Context, in RegisterInput, actor audit.Actor) (*models.Drone, error) {
	if len(in.SerialNumber) < 1 || len(in.SerialNumber) > 100 {
		return nil, apperr.Invalidf("Serial number must be between 1 and 100 characters")
	}
	maxWeight, ok := MaxWeightFor(in.Model)
	if !ok {
		return nil, apperr.Invalidf("Unknown drone model: %s", in.Model)
	}
	if in.WeightLimit <= 0 {
		return nil, apperr.Invalidf("Weight limit must be positive")
	}
	if in.WeightLimit > maxWeight {
		return nil, apperr.Invalidf("%s drone cannot have weight limit exceeding %gg", in.Model, maxWeight)
	}

	battery := 100.0
	if in.BatteryCapacity != nil {
		battery = *in.BatteryCapacity
	}
	if battery < 0 || battery > 100 {
		return nil, apperr.Invalidf("Battery capacity must be between 0 and 100")
	}
	var baseLat, baseLng float64
	if in.BaseLatitude != nil && in.BaseLongitude != nil {
		baseLat, baseLng = *in.BaseLatitude, *in.BaseLongitude
		if !geo.ValidCoordinates(baseLat, baseLng) {
			return nil, apperr.Invalidf("Invalid base coordinates")
		}
	}

	existing, err := s.drones.GetBySerial(ctx, in.SerialNumber)
	if err != nil {
		return nil, apperr.System(err)
	}
	if existing != nil {
		return nil, apperr.Conflictf("Drone with this serial number already exists")
	}

	drone, err := s.drones.Create(ctx, &models.Drone{
		SerialNumber:    in.SerialNumber,
		Model:           in.Model,
		WeightLimit:     in.WeightLimit,
		BatteryCapacity: battery,
		Status:          models.DroneStatusIdle,
		BaseLatitude:    baseLat,
		BaseLongitude:   baseLng,
		IsActive:        true,
	})
	if err != nil {
		return nil, apperr.System(err)
	}

	s.sink.Emit(ctx, audit.Event{
		Action:      "DRONE_REGISTER",
		Description: "Drone " + drone.SerialNumber + " registered",
		ActionData:  map[string]any{"serialNumber": drone.SerialNumber, "model": drone.Model, "weightLimit": drone.WeightLimit},
		Identity:    actor.Identity(),
		Owner:       actor.Owner(),
		What:        "/drones",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return drone, nil
}

// LoadItem is one requested medication line in a load operation.
type LoadItem struct {
	MedicationID string
	Quantity     int
}

// Load loads medications onto an IDLE drone. The whole item set is
// resolved and weight-checked before anything is written; the IDLE to
// LOADING transition is claimed atomically so concurrent loads against
// the same snapshot produce exactly one winner. On success the drone is
// LOADED with its new cumulative weight and the load entries attached.
func (s *Service) Load(ctx context.Context, droneID string, items []LoadItem, actor audit.Actor) (*models.Drone, []models.DroneMedication, error) {
	drone, err := s.drones.GetByID(ctx, droneID)
	if err != nil {
		return nil, nil, apperr.System(err)
	}
	if drone == nil {
		return nil, nil, apperr.NotFoundf("Drone not found")
	}
	if drone.Status != models.DroneStatusIdle {
		return nil, nil, apperr.Preconditionf("Drone is not available for loading. Current status: %s", drone.Status)
	}
	if drone.BatteryCapacity < models.MinBatteryForLoading {
		return nil, nil, apperr.Preconditionf("Drone battery level is below 25%% - cannot enter LOADING state")
	}
	if !drone.IsActive {
		return nil, nil, apperr.Preconditionf("Drone is not active")
	}
	if len(items) == 0 {
		return nil, nil, apperr.Invalidf("At least one item is required")
	}

	// Resolve and validate the entire set before any write. Each
	// medication may appear at most once per load cycle, counting
	// entries still on board from a previous cycle.
	existing, err := s.loads.ListUndelivered(ctx, drone.ID)
	if err != nil {
		return nil, nil, apperr.System(err)
	}
	onBoard := make(map[string]bool, len(existing))
	for _, e := range existing {
		onBoard[e.MedicationID] = true
	}

	now := time.Now()
	totalWeight := drone.CurrentLoadWeight
	entries := make([]models.DroneMedication, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, nil, apperr.Invalidf("Quantity must be at least 1")
		}
		if seen[item.MedicationID] {
			return nil, nil, apperr.Invalidf("Medication with ID %s appears more than once in the load request", item.MedicationID)
		}
		seen[item.MedicationID] = true
		if onBoard[item.MedicationID] {
			return nil, nil, apperr.Conflictf("Medication with ID %s is already loaded on this drone", item.MedicationID)
		}
		med, err := s.meds.GetByID(ctx, item.MedicationID)
		if err != nil {
			return nil, nil, apperr.System(err)
		}
		if med == nil {
			return nil, nil, apperr.NotFoundf("Medication with ID %s not found", item.MedicationID)
		}
		itemWeight := med.Weight * float64(item.Quantity)
		totalWeight += itemWeight
		if totalWeight > drone.WeightLimit {
			return nil, nil, apperr.Preconditionf("Drone cannot carry more than its weight limit")
		}
		entries = append(entries, models.DroneMedication{
			DroneID:      drone.ID,
			MedicationID: med.ID,
			Quantity:     item.Quantity,
			TotalWeight:  itemWeight,
			LoadedAt:     now,
		})
	}

	// Claim the transition: exactly one concurrent load wins this snapshot.
	won, err := s.drones.ClaimStatus(ctx, drone.ID, models.DroneStatusIdle, models.DroneStatusLoading)
	if err != nil {
		return nil, nil, apperr.System(err)
	}
	if !won {
		return nil, nil, apperr.Conflictf("Drone was modified concurrently; retry the load")
	}

	if err := s.drones.CommitLoad(ctx, drone.ID, entries, totalWeight); err != nil {
		// Release the claim so the drone is not stuck in LOADING.
		if relErr := s.drones.UpdateStatus(ctx, drone.ID, models.DroneStatusIdle); relErr != nil {
			s.logger.Error("failed to release loading claim",
				zap.String("drone_id", drone.ID), zap.Error(relErr))
		}
		return nil, nil, apperr.System(err)
	}

	loaded, err := s.drones.GetByID(ctx, drone.ID)
	if err != nil {
		return nil, nil, apperr.System(err)
	}
	if loaded == nil {
		return nil, nil, apperr.System(errors.New("drone deleted after load commit"))
	}
	loadEntries, err := s.loads.ListUndelivered(ctx, drone.ID)
	if err != nil {
		return nil, nil, apperr.System(err)
	}

	s.sink.Emit(ctx, audit.Event{
		Action:      "DRONE_LOAD",
		Description: "Drone " + loaded.SerialNumber + " loaded",
		ActionData:  map[string]any{"droneId": loaded.ID, "itemCount": len(items)},
		Feedback:    map[string]any{"totalWeight": totalWeight},
		Identity:    actor.Identity(),
		Owner:       actor.Owner(),
		What:        "/drones/" + loaded.ID + "/load",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return loaded, loadEntries, nil
}

// UpdateState moves a drone to newStatus through the transition table.
// This is the sole gate for status changes outside of Load's commit.
func (s *Service) UpdateState(ctx context.Context, droneID string, newStatus models.DroneStatus, actor audit.Actor) error {
	drone, err := s.drones.GetByID(ctx, droneID)
	if err != nil {
		return apperr.System(err)
	}
	if drone == nil {
		return apperr.NotFoundf("Drone not found")
	}
	if !CanTransition(drone.Status, newStatus) {
		return apperr.Conflictf("Invalid status transition from %s to %s", drone.Status, newStatus)
	}
	if newStatus == models.DroneStatusLoading && drone.BatteryCapacity < models.MinBatteryForLoading {
		return apperr.Preconditionf("Drone battery level is below 25%% - cannot enter LOADING state")
	}

	won, err := s.drones.ClaimStatus(ctx, drone.ID, drone.Status, newStatus)
	if err != nil {
		return apperr.System(err)
	}
	if !won {
		return apperr.Conflictf("Drone was modified concurrently; retry the transition")
	}

	s.sink.Emit(ctx, audit.Event{
		Action:      "DRONE_STATUS_CHANGE",
		Description: "Drone " + drone.SerialNumber + " status changed from " + string(drone.Status) + " to " + string(newStatus),
		ActionData:  map[string]any{"oldStatus": drone.Status, "newStatus": newStatus},
		Identity:    actor.Identity(),
		Owner:       actor.Owner(),
		What:        "/drones/" + drone.ID + "/state",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return nil
}

// UpdateLocation records a new current position for the drone.
// It has no status or capacity side effects.
func (s *Service) UpdateLocation(ctx context.Context, droneID string, lat, lng float64, actor audit.Actor) (*models.Drone, error) {
	if !geo.ValidCoordinates(lat, lng) {
		return nil, apperr.Invalidf("Invalid coordinates")
	}
	drone, err := s.drones.GetByID(ctx, droneID)
	if err != nil {
		return nil, apperr.System(err)
	}
	if drone == nil {
		return nil, apperr.NotFoundf("Drone not found")
	}
	if err := s.drones.UpdateLocation(ctx, drone.ID, lat, lng, time.Now()); err != nil {
		return nil, apperr.System(err)
	}
	updated, err := s.drones.GetByID(ctx, drone.ID)
	if err != nil {
		return nil, apperr.System(err)
	}
	if updated == nil {
		return nil, apperr.System(errors.New("drone deleted during location update"))
	}

	s.sink.Emit(ctx, audit.Event{
		Action:      "LOCATION_UPDATE",
		Description: "Location updated for drone " + drone.SerialNumber,
		ActionData:  map[string]any{"latitude": lat, "longitude": lng},
		Identity:    actor.Identity(),
		Owner:       actor.Owner(),
		What:        "/drones/" + drone.ID + "/location",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return updated, nil
}

// BatteryStatus is the result of a battery check.
type BatteryStatus struct {
	DroneID         string  `json:"drone_id"`
	SerialNumber    string  `json:"serial_number"`
	BatteryCapacity float64 `json:"battery_capacity"`
	IsLowBattery    bool    `json:"is_low_battery"`
	CanLoad         bool    `json:"can_load"`
}

// CheckBattery reports the drone's battery level and loadability.
// Pure read; repeated calls with no intervening mutation return the same result.
func (s *Service) CheckBattery(ctx context.Context, droneID string) (*BatteryStatus, error) {
	drone, err := s.drones.GetByID(ctx, droneID)
	if err != nil {
		return nil, apperr.System(err)
	}
	if drone == nil {
		return nil, apperr.NotFoundf("Drone not found")
	}
	return &BatteryStatus{
		DroneID:         drone.ID,
		SerialNumber:    drone.SerialNumber,
		BatteryCapacity: drone.BatteryCapacity,
		IsLowBattery:    drone.BatteryCapacity < models.MinBatteryForLoading,
		CanLoad:         drone.BatteryCapacity >= models.MinBatteryForLoading && drone.Status == models.DroneStatusIdle,
	}, nil
}

// FindNearestAvailable returns the available drone closest to the pickup
// point, or (nil, nil) when no drone qualifies. Candidates are IDLE,
// active, battery at or above the loading threshold, with spare capacity
// of at least requiredCapacity. Distance uses the drone's current
// location, falling back to its base. Equidistant candidates resolve to
// the lowest serial number.
func (s *Service) FindNearestAvailable(ctx context.Context, pickupLat, pickupLng, requiredCapacity float64) (*models.Drone, error) {
	if !geo.ValidCoordinates(pickupLat, pickupLng) {
		return nil, apperr.Invalidf("Invalid coordinates")
	}
	if requiredCapacity < 0 {
		return nil, apperr.Invalidf("Required capacity must not be negative")
	}
	candidates, err := s.drones.ListAvailable(ctx, requiredCapacity)
	if err != nil {
		return nil, apperr.System(err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Candidates arrive ordered by serial number; strict less-than keeps
	// the lowest serial on ties.
	nearest := &candidates[0]
	lat, lng := nearest.Location()
	minDistance := geo.DistanceKm(pickupLat, pickupLng, lat, lng)
	for i := 1; i < len(candidates); i++ {
		lat, lng = candidates[i].Location()
		d := geo.DistanceKm(pickupLat, pickupLng, lat, lng)
		if d < minDistance {
			minDistance = d
			nearest = &candidates[i]
		}
	}
	return nearest, nil
}

// Medications returns the drone's undelivered load entries with embedded
// medication summaries.
func (s *Service) Medications(ctx context.Context, droneID string) ([]models.DroneMedication, error) {
	drone, err := s.drones.GetByID(ctx, droneID)
	if err != nil {
		return nil, apperr.System(err)
	}
	if drone == nil {
		return nil, apperr.NotFoundf("Drone not found")
	}
	entries, err := s.loads.ListUndelivered(ctx, drone.ID)
	if err != nil {
		return nil, apperr.System(err)
	}
	return entries, nil
}

// Get returns a drone by id.
func (s *Service) Get(ctx context.Context, droneID string) (*models.Drone, error) {
	drone, err := s.drones.GetByID(ctx, droneID)
	if err != nil {
		return nil, apperr.System(err)
	}
	if drone == nil {
		return nil, apperr.NotFoundf("Drone not found")
	}
	return drone, nil
}

// List returns drones matching the given filters.
func (s *Service) List(ctx context.Context, p repository.ListDronesParams) ([]models.Drone, error) {
	out, err := s.drones.List(ctx, p)
	if err != nil {
		return nil, apperr.System(err)
	}
	return out, nil
}

// Deactivate soft-deletes a drone, preserving its history.
func (s *Service) Deactivate(ctx context.Context, droneID string, actor audit.Actor) error {
	drone, err := s.drones.GetByID(ctx, droneID)
	if err != nil {
		return apperr.System(err)
	}
	if drone == nil {
		return apperr.NotFoundf("Drone not found")
	}
	if err := s.drones.SoftDelete(ctx, drone.ID); err != nil {
		return apperr.System(err)
	}
	s.sink.Emit(ctx, audit.Event{
		Action:      "DRONE_DELETE",
		Description: "Drone " + drone.SerialNumber + " deactivated",
		Identity:    actor.Identity(),
		Owner:       actor.Owner(),
		What:        "/drones/" + drone.ID,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return nil
}
