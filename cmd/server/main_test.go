package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"backoffice/internal/config"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	if err := validateSecurityConfig(config.Config{AuthSecret: "short", RateLimit: "300-M"}); err == nil {
		t.Fatalf("expected short auth secret to be rejected")
	}
	if err := validateSecurityConfig(config.Config{RateLimit: "fast"}); err == nil {
		t.Fatalf("expected unparsable rate limit to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	if err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", RateLimit: "300-M"}); err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
	if err := validateSecurityConfig(config.Config{RateLimit: "10-S"}); err != nil {
		t.Fatalf("expected open config to pass, got %v", err)
	}
}

func TestTokenIssueCommandPrintsToken(t *testing.T) {
	cfg := config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", RateLimit: "300-M", AccessTokenTTLMinutes: 60}
	root := newRootCmd(cfg)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"token", "issue", "--subject", "ops", "--ttl", "1h"})

	if err := root.Execute(); err != nil {
		t.Fatalf("token issue failed: %v", err)
	}
	var issued struct {
		AccessToken string `json:"access_token"`
		Subject     string `json:"subject"`
	}
	if err := json.Unmarshal(out.Bytes(), &issued); err != nil {
		t.Fatalf("decode output: %v (%s)", err, out.String())
	}
	if issued.AccessToken == "" || issued.Subject != "ops" {
		t.Fatalf("unexpected token output: %+v", issued)
	}
}

func TestTokenIssueRequiresSecret(t *testing.T) {
	root := newRootCmd(config.Config{RateLimit: "300-M"})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"token", "issue", "--subject", "ops"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected token issue without AUTH_SECRET to fail")
	}
}

func TestTransferMonthlyCommandOnEmptyStore(t *testing.T) {
	root := newRootCmd(config.Config{RateLimit: "300-M"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"expenses", "transfer-monthly", "--year", "2024", "--month", "3"})

	if err := root.Execute(); err != nil {
		t.Fatalf("transfer-monthly failed: %v", err)
	}
	var result struct {
		YearMonth   string `json:"year_month"`
		Transferred bool   `json:"transferred"`
	}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("decode output: %v (%s)", err, out.String())
	}
	if result.YearMonth != "2024-03" || result.Transferred {
		t.Fatalf("expected no-op roll-up for 2024-03, got %+v", result)
	}
}

func TestTransferMonthlyRequiresBothFlags(t *testing.T) {
	root := newRootCmd(config.Config{RateLimit: "300-M"})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"expenses", "transfer-monthly", "--year", "2024"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected --year without --month to fail")
	}
}

func TestCloseLoggedRunsCloserAndSwallowsError(t *testing.T) {
	calls := 0
	closeLogged("repository", func() error {
		calls++
		return errors.New("connection reset")
	})
	if calls != 1 {
		t.Fatalf("expected closer to run once, got %d", calls)
	}
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	root := newRootCmd(config.Config{RateLimit: "300-M"})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"migrate"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected migrate without DATABASE_URL to fail")
	}
}
