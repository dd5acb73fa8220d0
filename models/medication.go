package models

import "time"

// MedicationType classifies what a medication record actually is.
type MedicationType string

const (
	MedicationTypeMedication      MedicationType = "MEDICATION"
	MedicationTypeMedicalSupplies MedicationType = "MEDICAL_SUPPLIES"
	MedicationTypeOther           MedicationType = "OTHER"
)

// Medication is an item a drone can carry. Weight is in grams.
// Code is unique and stored uppercased.
type Medication struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Code         string         `db:"code" json:"code"`
	Weight       float64        `db:"weight" json:"weight"`
	Type         MedicationType `db:"type" json:"type"`
	Description  string         `db:"description" json:"description,omitempty"`
	ImageURL     string         `db:"image_url" json:"image_url,omitempty"`
	Manufacturer string         `db:"manufacturer" json:"manufacturer,omitempty"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time     `db:"deleted_at" json:"-"`
}
