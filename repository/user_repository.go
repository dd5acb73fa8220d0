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

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, type, is_active, last_login_at, created_at, updated_at, deleted_at`

// Create inserts a new user. Role defaults to USER, type to INDIVIDUAL.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, errors.New("user is nil")
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Type == "" {
		u.Type = models.UserTypeIndividual
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `INSERT INTO users
		(id, name, email, password_hash, role, type, is_active, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Name, strings.ToLower(u.Email), u.PasswordHash, string(u.Role), string(u.Type), u.IsActive,
		fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt))
	if err != nil {
		return nil, err
	}
	return u, nil
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var role, typ, createdAt, updatedAt string
	var lastLogin, deletedAt sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &typ, &u.IsActive,
		&lastLogin, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	u.Role = models.UserRole(role)
	u.Type = models.UserType(typ)
	var tp timeParser
	u.LastLoginAt = tp.parseNull(lastLogin)
	u.CreatedAt = tp.parse(createdAt)
	u.UpdatedAt = tp.parse(updatedAt)
	u.DeletedAt = tp.parseNull(deletedAt)
	if tp.err != nil {
		return nil, tp.err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND deleted_at IS NULL`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`, strings.ToLower(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// ListUsersParams contains filters and pagination for List.
type ListUsersParams struct {
	Role       *models.UserRole
	ActiveOnly bool
	PageSize   int
	AfterEmail string
}

// List returns users ordered by email asc with keyset pagination by email.
func (r *UserRepository) List(ctx context.Context, p ListUsersParams) ([]models.User, error) {
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	where := []string{"deleted_at IS NULL"}
	args := make([]any, 0, 4)
	if p.Role != nil {
		where = append(where, "role = ?")
		args = append(args, string(*p.Role))
	}
	if p.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	if p.AfterEmail != "" {
		where = append(where, "email > ?")
		args = append(args, p.AfterEmail)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY email ASC LIMIT ?`
	args = append(args, p.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, fmtTime(time.Now()), id)
	return err
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		fmtTime(at), fmtTime(at), id)
	return err
}

func (r *UserRepository) SoftDelete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		fmtTime(time.Now()), fmtTime(time.Now()), id)
	return err
}
