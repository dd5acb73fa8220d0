package auth

import (
	"testing"
	"time"

	"droneMedicalDelivery/models"
)

const testSecret = "test-secret"

func testUser() *models.User {
	return &models.User{ID: "u-1", Email: "alice@clinic.example", Role: models.RoleUser}
}

func TestIssueAndParseBearer(t *testing.T) {
	tok, err := IssueToken(testSecret, testUser(), time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	p, err := ParseBearer("Bearer "+tok, testSecret)
	if err != nil {
		t.Fatalf("ParseBearer: %v", err)
	}
	if p.ID != "u-1" || p.Email != "alice@clinic.example" || p.Role != models.RoleUser {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestParseBearer_MissingHeader(t *testing.T) {
	if _, err := ParseBearer("", testSecret); err == nil {
		t.Fatalf("expected error for missing header")
	}
}

func TestParseBearer_InvalidScheme(t *testing.T) {
	tok, err := IssueToken(testSecret, testUser(), time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ParseBearer("Basic "+tok, testSecret); err == nil {
		t.Fatalf("expected error for non-Bearer scheme")
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	tok, err := IssueToken(testSecret, testUser(), time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := parseJWT(tok, "wrong"); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseJWT_Expired(t *testing.T) {
	tok, err := IssueToken(testSecret, testUser(), -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := parseJWT(tok, testSecret); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestParseJWT_ClaimsValidation(t *testing.T) {
	// Missing email/role -> invalid
	tok, err := IssueToken(testSecret, &models.User{ID: "u-2"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := parseJWT(tok, testSecret); err == nil {
		t.Fatalf("expected invalid claims error")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	h, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(h, "s3cret-pass") {
		t.Fatalf("expected password to verify")
	}
	if VerifyPassword(h, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}
