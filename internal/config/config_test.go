package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("CATALOG_MAX_PER_PAGE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.Catalog.DefaultPerPage)
	assert.Equal(t, 100, cfg.Catalog.MaxPerPage)
	assert.InDelta(t, 0.75, cfg.Catalog.DuplicateThreshold, 0.0001)
	assert.Equal(t, 5, cfg.Catalog.DuplicateLimit)
	assert.True(t, cfg.Catalog.SearchLogging)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5, cfg.RateLimit.SubmissionsPerMinute)
}

func TestLoad_CORSList(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment: "development",
			Database:    DatabaseConfig{Driver: "postgres"},
			JWT:         JWTConfig{SecretKey: "secret"},
			Catalog: CatalogConfig{
				DefaultPerPage:     20,
				MaxPerPage:         50,
				DuplicateThreshold: 0.75,
				DuplicateLimit:     5,
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("default secret in production", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "production"
		cfg.JWT.SecretKey = "your-secret-key-change-in-production"
		cfg.Database.Password = "pw"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := base()
		cfg.Database.Driver = "mysql"
		assert.Error(t, cfg.Validate())
	})

	t.Run("max below default", func(t *testing.T) {
		cfg := base()
		cfg.Catalog.MaxPerPage = 10
		assert.Error(t, cfg.Validate())
	})

	t.Run("enabled rate limit without burst", func(t *testing.T) {
		cfg := base()
		cfg.RateLimit = RateLimitConfig{Enabled: true, RequestsPerSecond: 10}
		assert.Error(t, cfg.Validate())
	})

	t.Run("threshold out of range", func(t *testing.T) {
		cfg := base()
		cfg.Catalog.DuplicateThreshold = 1.5
		assert.Error(t, cfg.Validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5433", User: "catalog", Password: "pw", Database: "props", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=catalog password=pw dbname=props sslmode=require TimeZone=UTC", cfg.DSN())
}
