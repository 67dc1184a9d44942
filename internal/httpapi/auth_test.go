package httpapi

import (
	"strings"
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	manager := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour)

	issued, err := manager.IssueToken("finance-bot", 0)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if strings.TrimSpace(issued.AccessToken) == "" {
		t.Fatalf("expected access token")
	}

	actor, err := manager.ParseToken(issued.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Subject != "finance-bot" {
		t.Fatalf("expected subject finance-bot, got %q", actor.Subject)
	}
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	issuer := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour)
	verifier := NewAuthManager("fedcba9876543210fedcba9876543210", time.Hour)

	issued, err := issuer.IssueToken("clerk", 0)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if _, err := verifier.ParseToken(issued.AccessToken); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	manager := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour)
	issued, err := manager.IssueToken("clerk", time.Minute)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	later := time.Now().UTC().Add(2 * time.Hour)
	manager.now = func() time.Time { return later }
	if _, err := manager.ParseToken(issued.AccessToken); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestIssueTokenRequiresSubject(t *testing.T) {
	manager := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour)
	if _, err := manager.IssueToken("  ", 0); err == nil {
		t.Fatalf("expected empty subject to be rejected")
	}
}
