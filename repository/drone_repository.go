package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"droneMedicalDelivery/models"
)

type DroneRepository struct {
	db *sql.DB
}

func NewDroneRepository(db *sql.DB) *DroneRepository {
	return &DroneRepository{db: db}
}

const droneColumns = `id, serial_number, model, weight_limit, current_load_weight, battery_capacity, status,
	base_latitude, base_longitude, current_latitude, current_longitude, last_location_update,
	last_maintenance_date, total_flight_time, is_active, created_at, updated_at, deleted_at`

// Create inserts a new drone. Status defaults to IDLE, battery to 100.
func (r *DroneRepository) Create(ctx context.Context, d *models.Drone) (*models.Drone, error) {
	if d == nil {
		return nil, errors.New("drone is nil")
	}
	if d.Status == "" {
		d.Status = models.DroneStatusIdle
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `INSERT INTO drones
		(id, serial_number, model, weight_limit, current_load_weight, battery_capacity, status,
		 base_latitude, base_longitude, current_latitude, current_longitude, last_location_update,
		 last_maintenance_date, total_flight_time, is_active, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.SerialNumber, string(d.Model), d.WeightLimit, d.CurrentLoadWeight, d.BatteryCapacity, string(d.Status),
		d.BaseLatitude, d.BaseLongitude, d.CurrentLatitude, d.CurrentLongitude, fmtTimePtr(d.LastLocationUpdate),
		fmtTimePtr(d.LastMaintenanceDate), d.TotalFlightTime, d.IsActive, fmtTime(d.CreatedAt), fmtTime(d.UpdatedAt))
	if err != nil {
		return nil, err
	}
	return d, nil
}

func scanDrone(row interface{ Scan(...any) error }) (*models.Drone, error) {
	var d models.Drone
	var model, status, createdAt, updatedAt string
	var curLat, curLng sql.NullFloat64
	var lastLoc, lastMaint, deletedAt sql.NullString
	err := row.Scan(&d.ID, &d.SerialNumber, &model, &d.WeightLimit, &d.CurrentLoadWeight, &d.BatteryCapacity, &status,
		&d.BaseLatitude, &d.BaseLongitude, &curLat, &curLng, &lastLoc,
		&lastMaint, &d.TotalFlightTime, &d.IsActive, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	d.Model = models.DroneModel(model)
	d.Status = models.DroneStatus(status)
	d.CurrentLatitude = floatPtr(curLat)
	d.CurrentLongitude = floatPtr(curLng)
	var tp timeParser
	d.LastLocationUpdate = tp.parseNull(lastLoc)
	d.LastMaintenanceDate = tp.parseNull(lastMaint)
	d.CreatedAt = tp.parse(createdAt)
	d.UpdatedAt = tp.parse(updatedAt)
	d.DeletedAt = tp.parseNull(deletedAt)
	if tp.err != nil {
		return nil, tp.err
	}
	return &d, nil
}

func (r *DroneRepository) GetByID(ctx context.Context, id string) (*models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	d, err := scanDrone(r.db.QueryRowContext(ctx,
		`SELECT `+droneColumns+` FROM drones WHERE id = ? AND deleted_at IS NULL`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (r *DroneRepository) GetBySerial(ctx context.Context, serial string) (*models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	d, err := scanDrone(r.db.QueryRowContext(ctx,
		`SELECT `+droneColumns+` FROM drones WHERE serial_number = ? AND deleted_at IS NULL`, serial))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

// ClaimStatus performs the conditional status transition used to serialize
// status-dependent operations: the UPDATE only matches while the drone is
// still in `from`, so exactly one concurrent caller observes RowsAffected=1.
func (r *DroneRepository) ClaimStatus(ctx context.Context, id string, from, to models.DroneStatus) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx,
		`UPDATE drones SET status = ?, updated_at = ? WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		string(to), fmtTime(time.Now()), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *DroneRepository) UpdateStatus(ctx context.Context, id string, status models.DroneStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE drones SET status = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		string(status), fmtTime(time.Now()), id)
	return err
}

func (r *DroneRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx,
		`UPDATE drones SET current_latitude = ?, current_longitude = ?, last_location_update = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		lat, lng, fmtTime(at), fmtTime(at), id)
	return err
}

// CommitLoad persists the load rows and the drone's new weight and LOADED
// status in a single transaction. The caller is expected to hold the
// LOADING claim for this drone; any error leaves no partial load behind.
func (r *DroneRepository) CommitLoad(ctx context.Context, droneID string, entries []models.DroneMedication, newLoadWeight float64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now()
	for i := range entries {
		e := &entries[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO drone_medications
			(id, drone_id, medication_id, quantity, total_weight, loaded_at, is_delivered, created_at)
			VALUES (?,?,?,?,?,?,?,?)`,
			e.ID, e.DroneID, e.MedicationID, e.Quantity, e.TotalWeight, fmtTime(e.LoadedAt), e.IsDelivered, fmtTime(now)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE drones SET current_load_weight = ?, status = ?, updated_at = ? WHERE id = ?`,
		newLoadWeight, string(models.DroneStatusLoaded), fmtTime(now), droneID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ListAvailable returns drones eligible for a new load: IDLE, active,
// battery at or above the loading threshold and enough spare capacity.
func (r *DroneRepository) ListAvailable(ctx context.Context, requiredCapacity float64) ([]models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+droneColumns+` FROM drones
		WHERE status = ? AND battery_capacity >= ? AND is_active = 1
		  AND (weight_limit - current_load_weight) >= ? AND deleted_at IS NULL
		ORDER BY serial_number ASC`,
		string(models.DroneStatusIdle), models.MinBatteryForLoading, requiredCapacity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDrones(rows)
}

// ListActive returns all active, non-deleted drones (battery sweep input).
func (r *DroneRepository) ListActive(ctx context.Context) ([]models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+droneColumns+` FROM drones WHERE is_active = 1 AND deleted_at IS NULL ORDER BY serial_number ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDrones(rows)
}

// ListDronesParams contains filters and pagination for List.
type ListDronesParams struct {
	Status         *models.DroneStatus
	Model          *models.DroneModel
	SerialContains *string
	PageSize       int
	AfterSerial    string
}

// List returns drones matching filters ordered by serial_number asc with
// keyset pagination by serial number.
func (r *DroneRepository) List(ctx context.Context, p ListDronesParams) ([]models.Drone, error) {
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	where := []string{"deleted_at IS NULL"}
	args := make([]any, 0, 5)

	if p.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*p.Status))
	}
	if p.Model != nil {
		where = append(where, "model = ?")
		args = append(args, string(*p.Model))
	}
	if p.SerialContains != nil && strings.TrimSpace(*p.SerialContains) != "" {
		where = append(where, "serial_number LIKE ?")
		args = append(args, "%"+strings.TrimSpace(*p.SerialContains)+"%")
	}
	if p.AfterSerial != "" {
		where = append(where, "serial_number > ?")
		args = append(args, p.AfterSerial)
	}

	query := `SELECT ` + droneColumns + ` FROM drones WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY serial_number ASC LIMIT ?`
	args = append(args, p.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDrones(rows)
}

// SoftDelete marks the drone deleted; history is preserved.
func (r *DroneRepository) SoftDelete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx,
		`UPDATE drones SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		fmtTime(time.Now()), fmtTime(time.Now()), id)
	return err
}

func collectDrones(rows *sql.Rows) ([]models.Drone, error) {
	var out []models.Drone
	for rows.Next() {
		d, err := scanDrone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
