package fleet

import "droneMedicalDelivery/models"

// MaxWeightFor returns the maximum weight limit for a drone model.
// ok is false for unknown models.
func MaxWeightFor(model models.DroneModel) (limit float64, ok bool) {
	limit, ok = models.DroneWeightLimits[model]
	return limit, ok
}

// AllowedNext returns the legal next statuses for the given status.
func AllowedNext(status models.DroneStatus) []models.DroneStatus {
	return models.ValidStateTransitions[status]
}

// CanTransition reports whether from -> to is an edge of the transition table.
func CanTransition(from, to models.DroneStatus) bool {
	for _, s := range models.ValidStateTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
