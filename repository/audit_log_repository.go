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

type AuditLogRepository struct {
	db *sql.DB
}

func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

const auditColumns = `id, action, description, action_data, feedback, identity, what, when_at, owner, ip_address, user_agent, created_at`

// Insert persists one audit entry. Audit rows are append-only.
func (r *AuditLogRepository) Insert(ctx context.Context, e *models.AuditLog) error {
	if e == nil {
		return errors.New("audit log is nil")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.When.IsZero() {
		e.When = time.Now()
	}
	e.CreatedAt = time.Now()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `INSERT INTO audit_logs
		(id, action, description, action_data, feedback, identity, what, when_at, owner, ip_address, user_agent, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.ID, e.Action, e.Description, e.ActionData, e.Feedback, e.Identity, e.What,
		fmtTime(e.When), e.Owner, e.IPAddress, e.UserAgent, fmtTime(e.CreatedAt))
	return err
}

// ListAuditLogsParams contains filters and pagination for List.
// When filters use the half-open interval [Since, Until).
type ListAuditLogsParams struct {
	Owner    string
	Action   string
	Since    *time.Time
	Until    *time.Time
	PageSize int
	AfterID  string
}

// List returns audit entries ordered by when_at desc, id desc with keyset
// pagination by id (ids are time-ordered enough for an audit browse view;
// the cursor keys on (when_at, id) to stay stable across equal timestamps).
func (r *AuditLogRepository) List(ctx context.Context, p ListAuditLogsParams) ([]models.AuditLog, error) {
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	where := []string{"1=1"}
	args := make([]any, 0, 6)
	if p.Owner != "" {
		where = append(where, "owner = ?")
		args = append(args, p.Owner)
	}
	if p.Action != "" {
		where = append(where, "action = ?")
		args = append(args, p.Action)
	}
	if p.Since != nil {
		where = append(where, "when_at >= ?")
		args = append(args, fmtTime(*p.Since))
	}
	if p.Until != nil {
		where = append(where, "when_at < ?")
		args = append(args, fmtTime(*p.Until))
	}
	if p.AfterID != "" {
		where = append(where, `(when_at, id) < (SELECT when_at, id FROM audit_logs WHERE id = ?)`)
		args = append(args, p.AfterID)
	}

	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY when_at DESC, id DESC LIMIT ?`
	args = append(args, p.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AuditLog
	for rows.Next() {
		var e models.AuditLog
		var whenAt, createdAt string
		if err := rows.Scan(&e.ID, &e.Action, &e.Description, &e.ActionData, &e.Feedback, &e.Identity,
			&e.What, &whenAt, &e.Owner, &e.IPAddress, &e.UserAgent, &createdAt); err != nil {
			return nil, err
		}
		var tp timeParser
		e.When = tp.parse(whenAt)
		e.CreatedAt = tp.parse(createdAt)
		if tp.err != nil {
			return nil, tp.err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
