package repository

import (
	"context"
	"database/sql"
	"time"

	"droneMedicalDelivery/models"
)

type DroneMedicationRepository struct {
	db *sql.DB
}

func NewDroneMedicationRepository(db *sql.DB) *DroneMedicationRepository {
	return &DroneMedicationRepository{db: db}
}

// ListUndelivered returns the drone's current load entries with the
// medication summary joined in, ordered by load time.
func (r *DroneMedicationRepository) ListUndelivered(ctx context.Context, droneID string) ([]models.DroneMedication, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT
		dm.id, dm.drone_id, dm.medication_id, dm.quantity, dm.total_weight, dm.loaded_at, dm.is_delivered, dm.created_at,
		m.id, m.name, m.code, m.weight, m.type, m.description, m.image_url, m.manufacturer, m.is_active, m.created_at, m.updated_at, m.deleted_at
		FROM drone_medications dm
		JOIN medications m ON m.id = dm.medication_id
		WHERE dm.drone_id = ? AND dm.is_delivered = 0 AND dm.deleted_at IS NULL
		ORDER BY dm.loaded_at ASC, dm.id ASC`, droneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DroneMedication
	for rows.Next() {
		var dm models.DroneMedication
		var med models.Medication
		var loadedAt, dmCreatedAt, medType, medCreatedAt, medUpdatedAt string
		var medDeletedAt sql.NullString
		if err := rows.Scan(
			&dm.ID, &dm.DroneID, &dm.MedicationID, &dm.Quantity, &dm.TotalWeight, &loadedAt, &dm.IsDelivered, &dmCreatedAt,
			&med.ID, &med.Name, &med.Code, &med.Weight, &medType, &med.Description, &med.ImageURL, &med.Manufacturer,
			&med.IsActive, &medCreatedAt, &medUpdatedAt, &medDeletedAt); err != nil {
			return nil, err
		}
		var tp timeParser
		dm.LoadedAt = tp.parse(loadedAt)
		dm.CreatedAt = tp.parse(dmCreatedAt)
		med.Type = models.MedicationType(medType)
		med.CreatedAt = tp.parse(medCreatedAt)
		med.UpdatedAt = tp.parse(medUpdatedAt)
		med.DeletedAt = tp.parseNull(medDeletedAt)
		if tp.err != nil {
			return nil, tp.err
		}
		dm.Medication = &med
		out = append(out, dm)
	}
	return out, rows.Err()
}
