package config

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "docentes_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "30")
	t.Setenv("IMPORT_SOURCE_OBJECT", "sync/docentes.xlsx")
	t.Setenv("INITIAL_ADMIN_USERNAME", "root")
	t.Setenv("INITIAL_ADMIN_PASSWORD", "s3cret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if cfg.MongoDB.Database != "docentes_test" {
		t.Fatalf("unexpected database: %q", cfg.MongoDB.Database)
	}
	if cfg.JWT.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("unexpected access token ttl: %v", cfg.JWT.AccessTokenTTL)
	}
	if cfg.Import.SourceObject != "sync/docentes.xlsx" {
		t.Fatalf("unexpected import source object: %q", cfg.Import.SourceObject)
	}
	if cfg.Bootstrap.AdminUsername != "root" || cfg.Bootstrap.AdminPassword != "s3cret" {
		t.Fatalf("unexpected bootstrap admin: %+v", cfg.Bootstrap)
	}
	if cfg.Bootstrap.AdminNombre != "Administrador" || cfg.Bootstrap.AdminEmail == "" {
		t.Fatalf("unexpected bootstrap defaults: %+v", cfg.Bootstrap)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MongoDB.Collection != "users" {
		t.Fatalf("unexpected default collection: %q", cfg.MongoDB.Collection)
	}
	if cfg.Import.SourcePath != "uploads/docentes.xlsx" {
		t.Fatalf("unexpected default import path: %q", cfg.Import.SourcePath)
	}
	if cfg.Bcrypt.Cost != 10 {
		t.Fatalf("unexpected default bcrypt cost: %d", cfg.Bcrypt.Cost)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Burst != 10 {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
}
