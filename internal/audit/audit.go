// Package audit records attributable activity events. The sink is
// fire-and-forget: a failure to persist an event is logged and swallowed
// so it can never fail the business operation that emitted it.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"droneMedicalDelivery/models"
	"droneMedicalDelivery/repository"
)

// SystemIdentity attributes events emitted by background tasks.
const SystemIdentity = "SYSTEM"

// Actor identifies who performed an operation, for event attribution.
// The zero value attributes to SYSTEM.
type Actor struct {
	ID        string
	Email     string
	IPAddress string
	UserAgent string
}

// Identity returns the actor's email, or SystemIdentity when absent.
func (a Actor) Identity() string {
	if a.Email == "" {
		return SystemIdentity
	}
	return a.Email
}

// Owner returns the actor's user id, or SystemIdentity when absent.
func (a Actor) Owner() string {
	if a.ID == "" {
		return SystemIdentity
	}
	return a.ID
}

// Event is one activity to record. ActionData and Feedback take any
// JSON-encodable value.
type Event struct {
	Action      string
	Description string
	ActionData  any
	Feedback    any
	Identity    string // email or SYSTEM
	Owner       string // user id or SYSTEM
	What        string // operation path, e.g. /drones/{id}/load
	When        time.Time
	IPAddress   string
	UserAgent   string
}

// Sink receives activity events.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// RepoSink persists events through the audit log repository.
type RepoSink struct {
	logs   repository.AuditLogRepositoryI
	logger *zap.Logger
}

func NewRepoSink(logs repository.AuditLogRepositoryI, logger *zap.Logger) *RepoSink {
	return &RepoSink{logs: logs, logger: logger}
}

// Emit persists the event. Errors are logged, never returned.
func (s *RepoSink) Emit(ctx context.Context, e Event) {
	if e.When.IsZero() {
		e.When = time.Now()
	}
	entry := &models.AuditLog{
		Action:      e.Action,
		Description: e.Description,
		ActionData:  marshalJSON(e.ActionData),
		Feedback:    marshalJSON(e.Feedback),
		Identity:    e.Identity,
		What:        e.What,
		When:        e.When,
		Owner:       e.Owner,
		IPAddress:   e.IPAddress,
		UserAgent:   e.UserAgent,
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		s.logger.Error("audit event dropped",
			zap.String("action", e.Action),
			zap.String("owner", e.Owner),
			zap.Error(err))
	}
}

func marshalJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// NopSink discards events; used in tests and as a safe default.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) {}
