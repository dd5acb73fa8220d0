package models

import "time"

// AuditLog is one durably recorded, attributable action.
// ActionData and Feedback hold JSON-encoded payloads; they stay opaque to
// the store so callers can shape them per action.
type AuditLog struct {
	ID          string    `db:"id" json:"id"`
	Action      string    `db:"action" json:"action"`
	Description string    `db:"description" json:"description"`
	ActionData  string    `db:"action_data" json:"action_data,omitempty"`
	Feedback    string    `db:"feedback" json:"feedback,omitempty"`
	Identity    string    `db:"identity" json:"identity"`
	What        string    `db:"what" json:"what"`
	When        time.Time `db:"when_at" json:"when"`
	Owner       string    `db:"owner" json:"owner"`
	IPAddress   string    `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent   string    `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
