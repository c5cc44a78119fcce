package services

import (
	"context"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/prop-catalog/internal/config"
	"github.com/javajoker/prop-catalog/internal/database"
	"github.com/javajoker/prop-catalog/internal/models"
)

var (
	admin  = models.Actor{UserID: 1, Role: models.RoleAdmin}
	member = models.Actor{UserID: 2, Role: models.RoleMember}
	other  = models.Actor{UserID: 3, Role: models.RoleMember}
)

// storeSuite gives each test a fresh, migrated in-memory catalog with a
// small taxonomy.
type storeSuite struct {
	suite.Suite
	db      *gorm.DB
	cfg     config.CatalogConfig
	catalog *CatalogService

	seating  models.Category
	tables   models.Category
	lighting models.Category

	style   models.TagGroup
	wood    models.Tag
	metal   models.Tag
	vintage models.Tag
}

func testCatalogConfig() config.CatalogConfig {
	return config.CatalogConfig{
		DefaultPerPage:     24,
		MaxPerPage:         100,
		DuplicateThreshold: 0.75,
		DuplicateLimit:     5,
		SearchLogging:      true,
	}
}

func (s *storeSuite) SetupTest() {
	db, err := database.Initialize(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", LogLevel: "silent"})
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(db))

	s.db = db
	s.cfg = testCatalogConfig()
	s.catalog = NewCatalogService(db, NewFavoritesStore(db), s.cfg)

	s.seating = s.createCategory("Seating", "seating")
	s.tables = s.createCategory("Tables", "tables")
	s.lighting = s.createCategory("Lighting", "lighting")

	s.style = models.TagGroup{Name: "Style", Slug: "style"}
	s.Require().NoError(db.Create(&s.style).Error)
	s.wood = s.createTag("Wood", "wood", &s.style.ID)
	s.metal = s.createTag("Metal", "metal", nil)
	s.vintage = s.createTag("Vintage", "vintage", &s.style.ID)
}

func (s *storeSuite) TearDownTest() {
	database.Close(s.db)
}

func (s *storeSuite) createCategory(name, slug string) models.Category {
	category := models.Category{Name: name, Slug: slug}
	s.Require().NoError(s.db.Create(&category).Error)
	return category
}

func (s *storeSuite) createTag(name, slug string, groupID *uint) models.Tag {
	tag := models.Tag{Name: name, Slug: slug, TagGroupID: groupID}
	s.Require().NoError(s.db.Create(&tag).Error)
	return tag
}

// addFurniture writes an item through the catalog write contract.
func (s *storeSuite) addFurniture(name string, price int, categoryIDs []uint, tagIDs ...uint) *models.Furniture {
	furniture, err := s.catalog.ApplyFurniturePayload(s.ctx(), nil, models.FurniturePayload{
		Name:        name,
		Price:       &price,
		CategoryIDs: categoryIDs,
		TagIDs:      tagIDs,
	})
	s.Require().NoError(err)
	return furniture
}

func (s *storeSuite) ctx() context.Context {
	return context.Background()
}

// assertCatalogInvariant checks that every item has categories and exactly one primary.
func (s *storeSuite) assertCatalogInvariant() {
	var rows []struct {
		FurnitureID uint
		Total       int
		Primaries   int
	}
	err := s.db.Model(&models.Furniture{}).
		Select("furniture.id AS furniture_id, COUNT(furniture_categories.category_id) AS total, " +
			"SUM(CASE WHEN furniture_categories.is_primary THEN 1 ELSE 0 END) AS primaries").
		Joins("LEFT JOIN furniture_categories ON furniture_categories.furniture_id = furniture.id").
		Group("furniture.id").
		Scan(&rows).Error
	s.Require().NoError(err)
	for _, row := range rows {
		s.GreaterOrEqual(row.Total, 1, "furniture %d has no category", row.FurnitureID)
		s.Equal(1, row.Primaries, "furniture %d primary count", row.FurnitureID)
	}
}
