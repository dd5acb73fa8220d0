package models

import "time"

// DroneModel is the weight class of a drone, bounding its carry capacity.
type DroneModel string

const (
	DroneModelLightweight   DroneModel = "Lightweight"
	DroneModelMiddleweight  DroneModel = "Middleweight"
	DroneModelCruiserweight DroneModel = "Cruiserweight"
	DroneModelHeavyweight   DroneModel = "Heavyweight"
)

// DroneStatus represents where a drone is in its delivery cycle.
type DroneStatus string

const (
	DroneStatusIdle        DroneStatus = "IDLE"
	DroneStatusLoading     DroneStatus = "LOADING"
	DroneStatusLoaded      DroneStatus = "LOADED"
	DroneStatusDelivering  DroneStatus = "DELIVERING"
	DroneStatusDelivered   DroneStatus = "DELIVERED"
	DroneStatusReturning   DroneStatus = "RETURNING"
	DroneStatusMaintenance DroneStatus = "MAINTENANCE"
)

// MinBatteryForLoading is the battery percentage below which a drone
// may not enter the LOADING state.
const MinBatteryForLoading = 25.0

// DroneWeightLimits maps each model to its maximum weight limit in grams.
var DroneWeightLimits = map[DroneModel]float64{
	DroneModelLightweight:   125,
	DroneModelMiddleweight:  250,
	DroneModelCruiserweight: 375,
	DroneModelHeavyweight:   500,
}

// ValidStateTransitions is the authoritative graph of legal status changes.
// Any transition not listed here is rejected.
var ValidStateTransitions = map[DroneStatus][]DroneStatus{
	DroneStatusIdle:        {DroneStatusLoading, DroneStatusMaintenance},
	DroneStatusLoading:     {DroneStatusLoaded, DroneStatusIdle},
	DroneStatusLoaded:      {DroneStatusDelivering, DroneStatusIdle},
	DroneStatusDelivering:  {DroneStatusDelivered, DroneStatusReturning},
	DroneStatusDelivered:   {DroneStatusReturning},
	DroneStatusReturning:   {DroneStatusIdle},
	DroneStatusMaintenance: {DroneStatusIdle},
}

// Drone represents a medical-delivery drone.
// Position is split between the fixed base location and the last reported
// current location; CurrentLatitude/Longitude are nil until the first update.
type Drone struct {
	ID                  string      `db:"id" json:"id"`
	SerialNumber        string      `db:"serial_number" json:"serial_number"`
	Model               DroneModel  `db:"model" json:"model"`
	WeightLimit         float64     `db:"weight_limit" json:"weight_limit"`
	CurrentLoadWeight   float64     `db:"current_load_weight" json:"current_load_weight"`
	BatteryCapacity     float64     `db:"battery_capacity" json:"battery_capacity"`
	Status              DroneStatus `db:"status" json:"status"`
	BaseLatitude        float64     `db:"base_latitude" json:"base_latitude"`
	BaseLongitude       float64     `db:"base_longitude" json:"base_longitude"`
	CurrentLatitude     *float64    `db:"current_latitude" json:"current_latitude,omitempty"`
	CurrentLongitude    *float64    `db:"current_longitude" json:"current_longitude,omitempty"`
	LastLocationUpdate  *time.Time  `db:"last_location_update" json:"last_location_update,omitempty"`
	LastMaintenanceDate *time.Time  `db:"last_maintenance_date" json:"last_maintenance_date,omitempty"`
	TotalFlightTime     float64     `db:"total_flight_time" json:"total_flight_time"`
	IsActive            bool        `db:"is_active" json:"is_active"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
	DeletedAt           *time.Time  `db:"deleted_at" json:"-"`
}

// AvailableCapacity is the weight the drone can still take on.
func (d *Drone) AvailableCapacity() float64 {
	return d.WeightLimit - d.CurrentLoadWeight
}

// Location returns the drone's current coordinates, falling back to its
// base location when no position has been reported yet.
func (d *Drone) Location() (lat, lng float64) {
	if d.CurrentLatitude != nil && d.CurrentLongitude != nil {
		return *d.CurrentLatitude, *d.CurrentLongitude
	}
	return d.BaseLatitude, d.BaseLongitude
}
