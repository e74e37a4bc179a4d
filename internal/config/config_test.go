package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partplan.yaml")

	content := `version: 1
database:
  host: localhost
  service: ORCLPDB1
  username: appuser
  password: apppass
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Database.Port != 1521 {
		t.Errorf("expected default port 1521, got %d", cfg.Database.Port)
	}
	if cfg.Database.QueryTimeout != 5*time.Minute {
		t.Errorf("expected default query timeout 5m, got %s", cfg.Database.QueryTimeout)
	}
	if cfg.Plan.Environment != "global" {
		t.Errorf("expected default environment global, got %s", cfg.Plan.Environment)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadInvalidVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partplan.yaml")

	content := `version: 99
database:
  host: localhost
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for invalid version")
	}
}

func TestSchemaName(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Username: "appuser"}}
	if got := cfg.SchemaName(); got != "APPUSER" {
		t.Errorf("expected APPUSER, got %s", got)
	}

	cfg.Database.Schema = "sales"
	if got := cfg.SchemaName(); got != "SALES" {
		t.Errorf("expected SALES, got %s", got)
	}
}

func TestResolveEnvSecret(t *testing.T) {
	t.Setenv("TEST_SECRET", "mysecret")
	val, err := ResolveValue(context.Background(), "${ENV:TEST_SECRET}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "mysecret" {
		t.Errorf("expected mysecret, got %s", val)
	}
}

func TestResolvePlainValue(t *testing.T) {
	val, err := ResolveValue(context.Background(), "plaintext")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "plaintext" {
		t.Errorf("expected plaintext, got %s", val)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partplan.yaml")

	cfg := &Config{
		Version: 1,
		Database: DatabaseConfig{
			Host:     "db.example.com",
			Port:     1521,
			Service:  "ORCLPDB1",
			Username: "appuser",
			Password: "apppass",
		},
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Database.Host != "db.example.com" {
		t.Errorf("expected db.example.com, got %s", loaded.Database.Host)
	}
	if loaded.Database.Service != "ORCLPDB1" {
		t.Errorf("expected ORCLPDB1, got %s", loaded.Database.Service)
	}
}
