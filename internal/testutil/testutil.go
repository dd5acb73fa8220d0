package testutil

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"droneMedicalDelivery/internal/auth"
	"droneMedicalDelivery/internal/db"
	"droneMedicalDelivery/models"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// Caller is responsible for closing the DB, typically via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// We use a shared cache memory database so that multiple connections share the same DB if needed.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// IssueToken returns a signed JWT string for the given user.
func IssueToken(t *testing.T, secret string, u *models.User) string {
	t.Helper()
	s, err := auth.IssueToken(secret, u, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// WithBearer sets the Authorization header on the request and returns it.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
