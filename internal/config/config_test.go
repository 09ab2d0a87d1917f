package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, errLoad := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if errLoad != nil {
		t.Fatalf("expected no error, got %v", errLoad)
	}
	if cfg.Port != 3000 {
		t.Fatalf("expected default port 3000, got %d", cfg.Port)
	}
	if cfg.DailyLimit != 20 {
		t.Fatalf("expected default daily limit 20, got %d", cfg.DailyLimit)
	}
	if cfg.JWT.Expiry != 7*24*time.Hour {
		t.Fatalf("expected default expiry 7d, got %s", cfg.JWT.Expiry)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: 8080\ndaily-limit: 5\njwt:\n  secret: file-secret\n  expiry: 1h\ngroq:\n  api-key: file-key\n"
	if errWrite := os.WriteFile(configPath, []byte(content), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	cfg, errLoad := Load(configPath)
	if errLoad != nil {
		t.Fatalf("expected no error, got %v", errLoad)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.DailyLimit != 5 {
		t.Fatalf("expected daily limit 5, got %d", cfg.DailyLimit)
	}
	if cfg.JWT.Secret != "file-secret" {
		t.Fatalf("expected secret from file, got %q", cfg.JWT.Secret)
	}
	if cfg.Groq.APIKey != "file-key" {
		t.Fatalf("expected groq key from file, got %q", cfg.Groq.APIKey)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(configPath, []byte("port: 8080\njwt:\n  secret: file-secret\n  expiry: 1h\n"), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvJWTSecret, "env-secret")
	t.Setenv(EnvJWTExpiry, "2h")

	cfg, errLoad := Load(configPath)
	if errLoad != nil {
		t.Fatalf("expected no error, got %v", errLoad)
	}
	if cfg.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Fatalf("expected secret=%q, got %q", "env-secret", cfg.JWT.Secret)
	}
	if cfg.JWT.Expiry != 2*time.Hour {
		t.Fatalf("expected expiry=%s, got %s", 2*time.Hour, cfg.JWT.Expiry)
	}
}

func TestInvalidPortRejected(t *testing.T) {
	t.Setenv(EnvPort, "70000")
	if _, errLoad := Load(filepath.Join(t.TempDir(), "missing.yaml")); errLoad == nil {
		t.Fatalf("expected error for invalid port")
	}
}
