package config

import (
	"os"
	"strings"
	"testing"
)

func setEnv(t *testing.T, key, val string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, val)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/labrecon_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.DocumentRoot != "./documents" {
		t.Errorf("DocumentRoot = %q, want ./documents", cfg.DocumentRoot)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestValidateProductionRequiresSecret(t *testing.T) {
	cfg := &Config{Env: "production", DocumentRoot: "/var/lib/labrecon"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing ADMIN_TOKEN_SECRET in production")
	}

	cfg.AdminTokenSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short ADMIN_TOKEN_SECRET")
	}

	cfg.AdminTokenSecret = strings.Repeat("s", 32)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateDocumentRoot(t *testing.T) {
	cfg := &Config{Env: "development", DocumentRoot: "  "}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty DOCUMENT_ROOT")
	}
}
