package models

import "time"

// DroneMedication is one medication type loaded onto one drone for the
// current load cycle. TotalWeight = medication weight x quantity.
// A (drone, medication) pair is unique among undelivered entries.
type DroneMedication struct {
	ID           string     `db:"id" json:"id"`
	DroneID      string     `db:"drone_id" json:"drone_id"`
	MedicationID string     `db:"medication_id" json:"medication_id"`
	Quantity     int        `db:"quantity" json:"quantity"`
	TotalWeight  float64    `db:"total_weight" json:"total_weight"`
	LoadedAt     time.Time  `db:"loaded_at" json:"loaded_at"`
	IsDelivered  bool       `db:"is_delivered" json:"is_delivered"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`

	// Medication is populated on reads that join the medications table.
	Medication *Medication `db:"-" json:"medication,omitempty"`
}
