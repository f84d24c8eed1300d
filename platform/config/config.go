// Package config loads the service configuration from the environment. Each
// consumer depends on the narrow interface it needs, not on Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RedisConfig provides settings for the Redis connection.
type RedisConfig interface {
	GetRedisURL() string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketBookingPhotos() string
	IsMinIOEnabled() bool
}

// GeocodingConfig provides settings for the Nominatim-compatible geocoder.
type GeocodingConfig interface {
	GetGeocoderBaseURL() string
	GetGeocoderUserAgent() string
	GetGeocoderCountryCodes() string
	GetGeocoderRatePerSecond() float64
	GetGeocoderCacheTTL() time.Duration
}

// APIConfig provides settings for the marketplace API collaborator.
type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

// BookingConfig provides settings for the booking wizard.
type BookingConfig interface {
	GetBookingSessionTTL() time.Duration
	GetBookingTimeZone() *time.Location
	GetCatalogFile() string
	GetCatalogSource() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	DatabaseURL              string
	JWTAccessSecret          string
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	RedisURL                 string
	MinIOEndpoint            string
	MinIOAccessKey           string
	MinIOSecretKey           string
	MinIOUseSSL              bool
	MinIOMaxFileSize         int64
	MinioBucketBookingPhotos string
	GeocoderBaseURL          string
	GeocoderUserAgent        string
	GeocoderCountryCodes     string
	GeocoderRatePerSecond    float64
	GeocoderCacheTTL         time.Duration
	APIBaseURL               string
	APITimeout               time.Duration
	BookingSessionTTL        time.Duration
	BookingTimeZone          *time.Location
	CatalogFile              string
	CatalogSource            string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RedisConfig implementation
func (c *Config) GetRedisURL() string { return c.RedisURL }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string            { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string           { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string           { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool                { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64          { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketBookingPhotos() string { return c.MinioBucketBookingPhotos }
func (c *Config) IsMinIOEnabled() bool                { return c.MinIOEndpoint != "" }

// GeocodingConfig implementation
func (c *Config) GetGeocoderBaseURL() string         { return c.GeocoderBaseURL }
func (c *Config) GetGeocoderUserAgent() string       { return c.GeocoderUserAgent }
func (c *Config) GetGeocoderCountryCodes() string    { return c.GeocoderCountryCodes }
func (c *Config) GetGeocoderRatePerSecond() float64  { return c.GeocoderRatePerSecond }
func (c *Config) GetGeocoderCacheTTL() time.Duration { return c.GeocoderCacheTTL }

// APIConfig implementation
func (c *Config) GetAPIBaseURL() string        { return c.APIBaseURL }
func (c *Config) GetAPITimeout() time.Duration { return c.APITimeout }

// BookingConfig implementation
func (c *Config) GetBookingSessionTTL() time.Duration { return c.BookingSessionTTL }
func (c *Config) GetBookingTimeZone() *time.Location  { return c.BookingTimeZone }
func (c *Config) GetCatalogFile() string              { return c.CatalogFile }
func (c *Config) GetCatalogSource() string            { return c.CatalogSource }

// Load reads configuration from the environment, after loading .env when one
// exists. Malformed values are reported together instead of defaulting.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var e env
	corsOrigins := splitCSV(e.str("CORS_ORIGINS", "http://localhost:5173"))

	cfg := &Config{
		Env:                      e.str("APP_ENV", "development"),
		HTTPAddr:                 e.str("HTTP_ADDR", ":8080"),
		DatabaseURL:              e.str("DATABASE_URL", ""),
		JWTAccessSecret:          e.str("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:             e.bool("CORS_ALLOW_ALL", false) || slices.Contains(corsOrigins, "*"),
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           e.bool("CORS_ALLOW_CREDENTIALS", true),
		RedisURL:                 e.str("REDIS_URL", "redis://localhost:6379/0"),
		MinIOEndpoint:            e.str("MINIO_ENDPOINT", ""),
		MinIOAccessKey:           e.str("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:           e.str("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:              e.bool("MINIO_USE_SSL", false),
		MinIOMaxFileSize:         e.int64("MINIO_MAX_FILE_SIZE", 10<<20),
		MinioBucketBookingPhotos: e.str("MINIO_BUCKET_BOOKING_PHOTOS", "booking-photos"),
		GeocoderBaseURL:          e.str("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent:        e.str("GEOCODER_USER_AGENT", "BookingPortal/1.0"),
		GeocoderCountryCodes:     e.str("GEOCODER_COUNTRY_CODES", "ml"),
		GeocoderRatePerSecond:    e.float("GEOCODER_RATE_PER_SECOND", 1),
		GeocoderCacheTTL:         e.duration("GEOCODER_CACHE_TTL", 24*time.Hour),
		APIBaseURL:               strings.TrimRight(e.str("API_BASE_URL", ""), "/"),
		APITimeout:               e.duration("API_TIMEOUT", 15*time.Second),
		BookingSessionTTL:        e.duration("BOOKING_SESSION_TTL", 2*time.Hour),
		BookingTimeZone:          e.location("BOOKING_TIME_ZONE", "Africa/Bamako"),
		CatalogFile:              e.str("CATALOG_FILE", "catalog.yaml"),
		CatalogSource:            strings.ToLower(e.str("CATALOG_SOURCE", "file")),
	}

	if cfg.JWTAccessSecret == "" {
		e.fail("JWT_ACCESS_SECRET is required")
	}
	if cfg.APIBaseURL == "" {
		e.fail("API_BASE_URL is required")
	}
	if cfg.CatalogSource == "database" && cfg.DatabaseURL == "" {
		e.fail("DATABASE_URL is required when CATALOG_SOURCE is database")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		e.fail("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.BookingSessionTTL <= 0 {
		e.fail("BOOKING_SESSION_TTL must be positive")
	}

	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env reads typed variables and collects parse failures.
type env struct {
	errs []error
}

func (e *env) fail(format string, args ...any) {
	e.errs = append(e.errs, fmt.Errorf(format, args...))
}

func (e *env) str(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return fallback
}

func (e *env) bool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		e.fail("%s: %w", key, err)
		return fallback
	}
	return v
}

func (e *env) int64(key string, fallback int64) int64 {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		e.fail("%s: %w", key, err)
		return fallback
	}
	return v
}

func (e *env) float(key string, fallback float64) float64 {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.fail("%s: %w", key, err)
		return fallback
	}
	return v
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.fail("%s: %w", key, err)
		return fallback
	}
	return v
}

func (e *env) location(key, fallback string) *time.Location {
	loc, err := time.LoadLocation(e.str(key, fallback))
	if err != nil {
		e.fail("%s: %w", key, err)
		return time.UTC
	}
	return loc
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
