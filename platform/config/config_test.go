package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("API_BASE_URL", "https://api.example.com/")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.BookingSessionTTL != 2*time.Hour {
		t.Fatalf("BookingSessionTTL = %v", cfg.BookingSessionTTL)
	}
	if cfg.BookingTimeZone.String() != "Africa/Bamako" {
		t.Fatalf("BookingTimeZone = %v", cfg.BookingTimeZone)
	}
	if cfg.MinIOMaxFileSize != 10<<20 {
		t.Fatalf("MinIOMaxFileSize = %d", cfg.MinIOMaxFileSize)
	}
	if cfg.IsMinIOEnabled() {
		t.Fatalf("MinIO should be disabled without an endpoint")
	}
}

func TestLoadCollectsErrors(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("MINIO_USE_SSL", "maybe")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected an error")
	}
	for _, want := range []string{"JWT_ACCESS_SECRET", "API_TIMEOUT", "MINIO_USE_SSL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadWildcardOriginRejectsCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", "https://a.example.com, *")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "CORS_ALLOW_CREDENTIALS") {
		t.Fatalf("err = %v, want credentials conflict", err)
	}

	t.Setenv("CORS_ALLOW_CREDENTIALS", "false")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.CORSAllowAll || len(cfg.CORSOrigins) != 2 {
		t.Fatalf("cors = %v %v", cfg.CORSAllowAll, cfg.CORSOrigins)
	}
}

func TestLoadDatabaseCatalogNeedsURL(t *testing.T) {
	setRequired(t)
	t.Setenv("CATALOG_SOURCE", "Database")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("err = %v", err)
	}
}
