package repository

import (
	"context"
	"time"

	"droneMedicalDelivery/models"
)

// DroneRepositoryI defines operations on Drone entities.
// Point reads return (nil, nil) when nothing matches.
type DroneRepositoryI interface {
	Create(ctx context.Context, d *models.Drone) (*models.Drone, error)
	GetByID(ctx context.Context, id string) (*models.Drone, error)
	GetBySerial(ctx context.Context, serial string) (*models.Drone, error)
	// ClaimStatus atomically moves the drone from `from` to `to` and reports
	// whether this caller won the transition. Exactly one of several
	// concurrent claims against the same snapshot succeeds.
	ClaimStatus(ctx context.Context, id string, from, to models.DroneStatus) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.DroneStatus) error
	UpdateLocation(ctx context.Context, id string, lat, lng float64, at time.Time) error
	CommitLoad(ctx context.Context, droneID string, entries []models.DroneMedication, newLoadWeight float64) error
	ListAvailable(ctx context.Context, requiredCapacity float64) ([]models.Drone, error)
	List(ctx context.Context, p ListDronesParams) ([]models.Drone, error)
	ListActive(ctx context.Context) ([]models.Drone, error)
	SoftDelete(ctx context.Context, id string) error
}

// MedicationRepositoryI defines read/write access to medications.
type MedicationRepositoryI interface {
	Create(ctx context.Context, m *models.Medication) (*models.Medication, error)
	GetByID(ctx context.Context, id string) (*models.Medication, error)
	GetByCode(ctx context.Context, code string) (*models.Medication, error)
	ListActive(ctx context.Context) ([]models.Medication, error)
	Search(ctx context.Context, term string) ([]models.Medication, error)
	Deactivate(ctx context.Context, id string) error
}

// DroneMedicationRepositoryI defines read access to load entries.
// Writes happen through DroneRepositoryI.CommitLoad so the load rows and
// the drone's weight/status change share one transaction.
type DroneMedicationRepositoryI interface {
	ListUndelivered(ctx context.Context, droneID string) ([]models.DroneMedication, error)
}

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, p ListUsersParams) ([]models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SoftDelete(ctx context.Context, id string) error
}

// AuditLogRepositoryI persists and queries audit entries.
type AuditLogRepositoryI interface {
	Insert(ctx context.Context, e *models.AuditLog) error
	List(ctx context.Context, p ListAuditLogsParams) ([]models.AuditLog, error)
}
