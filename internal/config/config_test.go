package config

import "testing"

func TestLoadDoesNotInjectAuthSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
}

func TestLoadParsesDepartmentList(t *testing.T) {
	t.Setenv("DEFAULT_DEPARTMENTS", " HR, ,Finance ,IT")

	cfg := Load()
	want := []string{"HR", "Finance", "IT"}
	if len(cfg.DefaultDepartments) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.DefaultDepartments)
	}
	for i := range want {
		if cfg.DefaultDepartments[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cfg.DefaultDepartments)
		}
	}
}

func TestLoadFallsBackOnBadTokenTTL(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "-5")

	if got := Load().AccessTokenTTLMinutes; got != 720 {
		t.Fatalf("expected default ttl 720, got %d", got)
	}
}
