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

type MedicationRepository struct {
	db *sql.DB
}

func NewMedicationRepository(db *sql.DB) *MedicationRepository {
	return &MedicationRepository{db: db}
}

const medicationColumns = `id, name, code, weight, type, description, image_url, manufacturer, is_active, created_at, updated_at, deleted_at`

// Create inserts a new medication. Type defaults to MEDICATION.
func (r *MedicationRepository) Create(ctx context.Context, m *models.Medication) (*models.Medication, error) {
	if m == nil {
		return nil, errors.New("medication is nil")
	}
	if m.Type == "" {
		m.Type = models.MedicationTypeMedication
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `INSERT INTO medications
		(id, name, code, weight, type, description, image_url, manufacturer, is_active, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		m.ID, m.Name, m.Code, m.Weight, string(m.Type), m.Description, m.ImageURL, m.Manufacturer, m.IsActive,
		fmtTime(m.CreatedAt), fmtTime(m.UpdatedAt))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func scanMedication(row interface{ Scan(...any) error }) (*models.Medication, error) {
	var m models.Medication
	var typ, createdAt, updatedAt string
	var deletedAt sql.NullString
	err := row.Scan(&m.ID, &m.Name, &m.Code, &m.Weight, &typ, &m.Description, &m.ImageURL, &m.Manufacturer,
		&m.IsActive, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	m.Type = models.MedicationType(typ)
	var tp timeParser
	m.CreatedAt = tp.parse(createdAt)
	m.UpdatedAt = tp.parse(updatedAt)
	m.DeletedAt = tp.parseNull(deletedAt)
	if tp.err != nil {
		return nil, tp.err
	}
	return &m, nil
}

func (r *MedicationRepository) GetByID(ctx context.Context, id string) (*models.Medication, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	m, err := scanMedication(r.db.QueryRowContext(ctx,
		`SELECT `+medicationColumns+` FROM medications WHERE id = ? AND deleted_at IS NULL`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *MedicationRepository) GetByCode(ctx context.Context, code string) (*models.Medication, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	m, err := scanMedication(r.db.QueryRowContext(ctx,
		`SELECT `+medicationColumns+` FROM medications WHERE code = ? AND deleted_at IS NULL`, strings.ToUpper(code)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *MedicationRepository) ListActive(ctx context.Context) ([]models.Medication, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+medicationColumns+` FROM medications WHERE is_active = 1 AND deleted_at IS NULL ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMedications(rows)
}

// Search matches active medications by case-insensitive name or code substring.
func (r *MedicationRepository) Search(ctx context.Context, term string) ([]models.Medication, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	like := "%" + strings.TrimSpace(term) + "%"
	rows, err := r.db.QueryContext(ctx, `SELECT `+medicationColumns+` FROM medications
		WHERE is_active = 1 AND deleted_at IS NULL
		  AND (name LIKE ? COLLATE NOCASE OR code LIKE ? COLLATE NOCASE)
		ORDER BY code ASC`, like, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMedications(rows)
}

// Deactivate soft-deletes the medication. The row stays referenced by
// historical load entries; its code becomes reusable.
func (r *MedicationRepository) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	now := fmtTime(time.Now())
	_, err := r.db.ExecContext(ctx,
		`UPDATE medications SET is_active = 0, deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	return err
}

func collectMedications(rows *sql.Rows) ([]models.Medication, error) {
	var out []models.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
