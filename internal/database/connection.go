// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/prop-catalog/internal/config"
	"github.com/javajoker/prop-catalog/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	// Connect to database
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	if cfg.Driver == "sqlite" {
		// SQLite has a single writer, and an in-memory database lives only as
		// long as its one connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)
	}

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithField("driver", db.Dialector.Name()).Info("Database connection established successfully")
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	if err := db.SetupJoinTable(&models.Furniture{}, "Tags", &models.FurnitureTag{}); err != nil {
		return fmt.Errorf("failed to set up furniture_tags join table: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Category{},
		&models.TagGroup{},
		&models.Tag{},
		&models.Furniture{},
		&models.FurnitureCategory{},
		&models.FurnitureTag{},
		&models.Submission{},
		&models.Favorite{},
		&models.SearchLog{},
		&models.AuditLog{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_furniture_created_at ON furniture(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_furniture_categories_primary ON furniture_categories(furniture_id, is_primary)",
		"CREATE INDEX IF NOT EXISTS idx_submissions_status_created ON submissions(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_submissions_user_status ON submissions(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_search_logs_query_created ON search_logs(query, created_at DESC)",
	}

	if db.Dialector.Name() == "postgres" {
		// Exactly one primary category per furniture, enforced by the store as well.
		indexes = append(indexes,
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_furniture_categories_one_primary ON furniture_categories(furniture_id) WHERE is_primary",
			"CREATE EXTENSION IF NOT EXISTS pg_trgm",
			"CREATE INDEX IF NOT EXISTS idx_furniture_search_name_trgm ON furniture USING GIN (search_name gin_trgm_ops)",
		)
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).WithField("statement", index).Warn("Failed to create index")
		}
	}

	return nil
}

// SeedInitialData creates the default taxonomy on an empty catalog.
func SeedInitialData(db *gorm.DB) error {
	logrus.Info("Seeding initial data...")

	var categoryCount int64
	if err := db.Model(&models.Category{}).Count(&categoryCount).Error; err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}

	if categoryCount == 0 {
		categories := []models.Category{
			{Name: "Seating", Slug: "seating", Icon: "chair", SortOrder: 10},
			{Name: "Tables", Slug: "tables", Icon: "table", SortOrder: 20},
			{Name: "Beds", Slug: "beds", Icon: "bed", SortOrder: 30},
			{Name: "Storage", Slug: "storage", Icon: "archive", SortOrder: 40},
			{Name: "Lighting", Slug: "lighting", Icon: "lamp", SortOrder: 50},
			{Name: "Decor", Slug: "decor", Icon: "sparkles", SortOrder: 60},
			{Name: "Outdoor", Slug: "outdoor", Icon: "tree", SortOrder: 70},
		}
		if err := db.Create(&categories).Error; err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
		logrus.WithField("count", len(categories)).Info("Default categories created")
	}

	var groupCount int64
	if err := db.Model(&models.TagGroup{}).Count(&groupCount).Error; err != nil {
		return fmt.Errorf("failed to count tag groups: %w", err)
	}

	if groupCount == 0 {
		groups := []models.TagGroup{
			{Name: "Style", Slug: "style", Color: "#8b5cf6", SortOrder: 10},
			{Name: "Materials", Slug: "materials", Color: "#d97706", SortOrder: 20},
			{Name: "Colors", Slug: "colors", Color: "#0ea5e9", SortOrder: 30},
		}
		if err := db.Create(&groups).Error; err != nil {
			return fmt.Errorf("failed to seed tag groups: %w", err)
		}
		logrus.WithField("count", len(groups)).Info("Default tag groups created")
	}

	logrus.Info("Initial data seeding completed")
	return nil
}
