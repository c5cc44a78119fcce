// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Catalog     CatalogConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	I18n        I18nConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Driver       string
	Path         string
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey string
}

// CatalogConfig holds the tunables of the search engine and the duplicate detector.
type CatalogConfig struct {
	DefaultPerPage     int
	MaxPerPage         int
	DuplicateThreshold float64
	DuplicateLimit     int
	SearchLogging      bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig sizes the per-client token buckets.
type RateLimitConfig struct {
	Enabled              bool
	RequestsPerSecond    float64
	Burst                int
	SubmissionsPerMinute int
}

type LogConfig struct {
	Level  string
	Format string
}

type I18nConfig struct {
	DefaultLocale string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "postgres"),
			Path:         getEnv("DB_PATH", "prop_catalog.db"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "prop_catalog"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		Catalog: CatalogConfig{
			DefaultPerPage:     getEnvAsInt("CATALOG_DEFAULT_PER_PAGE", 24),
			MaxPerPage:         getEnvAsInt("CATALOG_MAX_PER_PAGE", 100),
			DuplicateThreshold: getEnvAsFloat("CATALOG_DUPLICATE_THRESHOLD", 0.75),
			DuplicateLimit:     getEnvAsInt("CATALOG_DUPLICATE_LIMIT", 5),
			SearchLogging:      getEnvAsBool("CATALOG_SEARCH_LOGGING", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		RateLimit: RateLimitConfig{
			Enabled:              getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond:    getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:                getEnvAsInt("RATE_LIMIT_BURST", 20),
			SubmissionsPerMinute: getEnvAsInt("RATE_LIMIT_SUBMISSIONS_PER_MINUTE", 5),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Database.Driver == "sqlite" && c.Environment == "production" {
		return fmt.Errorf("sqlite driver is for local development only")
	}

	if c.Catalog.DefaultPerPage < 1 || c.Catalog.MaxPerPage < c.Catalog.DefaultPerPage {
		return fmt.Errorf("catalog page sizes are inconsistent: default=%d max=%d",
			c.Catalog.DefaultPerPage, c.Catalog.MaxPerPage)
	}

	if c.Catalog.DuplicateThreshold <= 0 || c.Catalog.DuplicateThreshold > 1 {
		return fmt.Errorf("duplicate threshold must be in (0, 1], got %v", c.Catalog.DuplicateThreshold)
	}

	if c.Catalog.DuplicateLimit < 1 {
		return fmt.Errorf("duplicate limit must be positive")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1 || c.RateLimit.SubmissionsPerMinute < 1) {
		return fmt.Errorf("rate limits must be positive when enabled")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
