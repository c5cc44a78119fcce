// internal/config/database.go
package config

import (
	"fmt"
)

// DSN builds the libpq-style connection string understood by the GORM postgres driver.
// Timestamps are always stored and read in UTC.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
