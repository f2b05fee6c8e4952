package httpapi

import (
	"strings"
	"testing"
	"time"

	"rawbazaar/backend/internal/domain"
)

func TestSessionIssueAndParse(t *testing.T) {
	sessions := NewSessionManager("test-secret-key-test-secret-key!", time.Hour)
	actor := domain.Actor{UserID: 4, UserType: domain.UserSupplier}

	token, expiresAt, err := sessions.Issue(actor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %s", expiresAt)
	}

	parsed, err := sessions.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != actor {
		t.Fatalf("expected %+v, got %+v", actor, parsed)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments")
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := sessions.Parse(tampered); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}
}

func TestSessionExpires(t *testing.T) {
	sessions := NewSessionManager("test-secret-key-test-secret-key!", time.Minute)
	issued := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return issued }

	token, _, err := sessions.Issue(domain.Actor{UserID: 1, UserType: domain.UserVendor})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	sessions.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := sessions.Parse(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestSessionRejectsInvalidActor(t *testing.T) {
	sessions := NewSessionManager("", 0)
	if _, _, err := sessions.Issue(domain.Actor{UserID: 0, UserType: domain.UserVendor}); err == nil {
		t.Fatalf("expected error for invalid actor")
	}
	if _, _, err := sessions.Issue(domain.Actor{UserID: 1, UserType: "admin"}); err == nil {
		t.Fatalf("expected error for unknown user type")
	}
}
