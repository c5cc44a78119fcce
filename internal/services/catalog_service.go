// internal/services/catalog_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/prop-catalog/internal/apperrors"
	"github.com/javajoker/prop-catalog/internal/config"
	"github.com/javajoker/prop-catalog/internal/models"
	"github.com/javajoker/prop-catalog/internal/utils"
)

const maxBatchSize = 100

type CatalogService struct {
	db        *gorm.DB
	favorites FavoritesStore
	cfg       config.CatalogConfig
}

type FurnitureSort string

const (
	SortName   FurnitureSort = "name"
	SortPrice  FurnitureSort = "price"
	SortNewest FurnitureSort = "newest"
)

// CatalogFilters narrow listing and search results.
type CatalogFilters struct {
	CategorySlug  string
	TagSlugs      []string
	FavoritesOnly bool
	// Actor is required when FavoritesOnly is set.
	Actor *models.Actor
}

type FurnitureListParams struct {
	utils.PaginationParams
	CatalogFilters
}

type FurniturePage struct {
	Items      []models.Furniture `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
	TotalPages int                `json:"total_pages"`
}

func newFurniturePage(items []models.Furniture, total int64, params utils.PaginationParams) *FurniturePage {
	if items == nil {
		items = []models.Furniture{}
	}
	return &FurniturePage{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: utils.TotalPages(total, params.PerPage),
	}
}

func NewCatalogService(db *gorm.DB, favorites FavoritesStore, cfg config.CatalogConfig) *CatalogService {
	return &CatalogService{
		db:        db,
		favorites: favorites,
		cfg:       cfg,
	}
}

// ApplyFurniturePayload creates (targetID == nil) or fully replaces
// (targetID != nil) a furniture item and all of its category and tag
// associations in one transaction.
func (s *CatalogService) ApplyFurniturePayload(ctx context.Context, targetID *uint, payload models.FurniturePayload) (*models.Furniture, error) {
	var furniture *models.Furniture
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		furniture, err = s.ApplyFurniturePayloadTx(tx, targetID, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	return furniture, nil
}

// SaveFurniture is the direct staff edit path: the same write as an approved
// submission, plus an audit entry.
func (s *CatalogService) SaveFurniture(ctx context.Context, actor models.Actor, targetID *uint, payload models.FurniturePayload) (*models.Furniture, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only staff can edit the catalog directly")
	}

	var furniture *models.Furniture
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var before models.JSONB
		if targetID != nil {
			var existing models.Furniture
			if err := preloadFurniture(tx).First(&existing, *targetID).Error; err == nil {
				before = furnitureSnapshot(&existing)
			}
		}

		var err error
		furniture, err = s.ApplyFurniturePayloadTx(tx, targetID, payload)
		if err != nil {
			return err
		}
		return createAuditLog(tx, actor, models.AuditActionSaveFurniture, "furniture", furniture.ID, before, furnitureSnapshot(furniture))
	})
	if err != nil {
		return nil, err
	}
	return furniture, nil
}

// ApplyFurniturePayloadTx is ApplyFurniturePayload inside a caller-owned
// transaction. The caller commits or rolls back.
func (s *CatalogService) ApplyFurniturePayloadTx(tx *gorm.DB, targetID *uint, payload models.FurniturePayload) (*models.Furniture, error) {
	if err := PreparePayload(&payload); err != nil {
		return nil, err
	}

	if err := CheckPayloadReferences(tx, payload); err != nil {
		return nil, err
	}

	var imageURL *string
	if payload.ImageURL != "" {
		imageURL = &payload.ImageURL
	}

	var furniture models.Furniture
	if targetID == nil {
		furniture = models.Furniture{
			Name:       payload.Name,
			SearchName: NormalizeQuery(payload.Name),
			Price:      payload.PriceOrDefault(),
			ImageURL:   imageURL,
		}
		if err := tx.Omit(clause.Associations).Create(&furniture).Error; err != nil {
			return nil, apperrors.Wrap(err, "failed to create furniture")
		}
	} else {
		if err := lockForUpdate(tx).First(&furniture, *targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFoundf("furniture %d not found", *targetID)
			}
			return nil, apperrors.Wrap(err, "failed to load furniture")
		}

		furniture.Name = payload.Name
		furniture.SearchName = NormalizeQuery(payload.Name)
		furniture.Price = payload.PriceOrDefault()
		furniture.ImageURL = imageURL
		if err := tx.Omit(clause.Associations).Save(&furniture).Error; err != nil {
			return nil, apperrors.Wrap(err, "failed to update furniture")
		}

		// Replace, never merge: the payload is the complete desired set.
		if err := tx.Where("furniture_id = ?", furniture.ID).Delete(&models.FurnitureCategory{}).Error; err != nil {
			return nil, apperrors.Wrap(err, "failed to clear furniture categories")
		}
		if err := tx.Where("furniture_id = ?", furniture.ID).Delete(&models.FurnitureTag{}).Error; err != nil {
			return nil, apperrors.Wrap(err, "failed to clear furniture tags")
		}
	}

	categories := make([]models.FurnitureCategory, 0, len(payload.CategoryIDs))
	for i, categoryID := range payload.CategoryIDs {
		categories = append(categories, models.FurnitureCategory{
			FurnitureID: furniture.ID,
			CategoryID:  categoryID,
			IsPrimary:   i == 0,
		})
	}
	if err := tx.Omit(clause.Associations).Create(&categories).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to save furniture categories")
	}

	if len(payload.TagIDs) > 0 {
		tags := make([]models.FurnitureTag, 0, len(payload.TagIDs))
		for _, tagID := range payload.TagIDs {
			tags = append(tags, models.FurnitureTag{FurnitureID: furniture.ID, TagID: tagID})
		}
		if err := tx.Create(&tags).Error; err != nil {
			return nil, apperrors.Wrap(err, "failed to save furniture tags")
		}
	}

	var saved models.Furniture
	if err := preloadFurniture(tx).First(&saved, furniture.ID).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to reload furniture")
	}

	logrus.WithFields(logrus.Fields{
		"furniture_id": saved.ID,
		"created":      targetID == nil,
		"categories":   len(payload.CategoryIDs),
		"tags":         len(payload.TagIDs),
	}).Info("Furniture payload applied")

	return &saved, nil
}

// PreparePayload normalizes the payload in place and validates its shape.
func PreparePayload(payload *models.FurniturePayload) error {
	payload.Normalize()
	return utils.Validate(payload)
}

// CheckPayloadReferences verifies that every category and tag id exists.
func CheckPayloadReferences(db *gorm.DB, payload models.FurniturePayload) error {
	missingCategories, err := missingIDs(db, &models.Category{}, payload.CategoryIDs)
	if err != nil {
		return apperrors.Wrap(err, "failed to check categories")
	}
	missingTags, err := missingIDs(db, &models.Tag{}, payload.TagIDs)
	if err != nil {
		return apperrors.Wrap(err, "failed to check tags")
	}

	if len(missingCategories) == 0 && len(missingTags) == 0 {
		return nil
	}

	var parts []string
	details := map[string][]uint{}
	if len(missingCategories) > 0 {
		parts = append(parts, "unknown category ids: "+joinIDs(missingCategories))
		details["category_ids"] = missingCategories
	}
	if len(missingTags) > 0 {
		parts = append(parts, "unknown tag ids: "+joinIDs(missingTags))
		details["tag_ids"] = missingTags
	}
	return apperrors.ValidationWithDetails(strings.Join(parts, "; "), details)
}

func missingIDs(db *gorm.DB, model interface{}, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []uint
	if err := db.Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}

	var missing []uint
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

// lockForUpdate takes a row lock where the dialect supports it.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func preloadFurniture(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC").Order("category_id ASC")
		}).
		Preload("Categories.Category").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		})
}

// DeleteFurniture removes an item with its associations and favorites.
// Pending edit submissions that target it are rejected, since they can no
// longer be applied.
func (s *CatalogService) DeleteFurniture(ctx context.Context, actor models.Actor, id uint) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("only staff can delete furniture")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var furniture models.Furniture
		if err := lockForUpdate(tx).First(&furniture, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("furniture %d not found", id)
			}
			return apperrors.Wrap(err, "failed to load furniture")
		}

		var snapshot models.Furniture
		if err := preloadFurniture(tx).First(&snapshot, id).Error; err != nil {
			return apperrors.Wrap(err, "failed to load furniture")
		}
		if err := createAuditLog(tx, actor, models.AuditActionDeleteFurniture, "furniture", id, furnitureSnapshot(&snapshot), nil); err != nil {
			return err
		}

		now := time.Now()
		note := "The item was removed from the catalog."
		if err := tx.Model(&models.Submission{}).
			Where("furniture_id = ? AND type = ? AND status = ?", id, models.SubmissionTypeEdit, models.SubmissionStatusPending).
			Updates(map[string]interface{}{
				"status":      models.SubmissionStatusRejected,
				"reviewed_by": actor.UserID,
				"reviewed_at": now,
				"admin_notes": note,
				"updated_at":  now,
			}).Error; err != nil {
			return apperrors.Wrap(err, "failed to close pending submissions")
		}

		for _, model := range []interface{}{&models.FurnitureCategory{}, &models.FurnitureTag{}, &models.Favorite{}} {
			if err := tx.Where("furniture_id = ?", id).Delete(model).Error; err != nil {
				return apperrors.Wrap(err, "failed to delete furniture associations")
			}
		}

		if err := tx.Delete(&furniture).Error; err != nil {
			return apperrors.Wrap(err, "failed to delete furniture")
		}

		logrus.WithFields(logrus.Fields{
			"furniture_id": id,
			"admin_id":     actor.UserID,
		}).Info("Furniture deleted")
		return nil
	})
}

func (s *CatalogService) GetFurniture(ctx context.Context, id uint) (*models.Furniture, error) {
	var furniture models.Furniture
	if err := preloadFurniture(s.db.WithContext(ctx)).First(&furniture, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("furniture %d not found", id)
		}
		return nil, apperrors.Wrap(err, "failed to load furniture")
	}
	return &furniture, nil
}

// GetFurnitureBatch returns the items in the order requested. Unknown ids are skipped.
func (s *CatalogService) GetFurnitureBatch(ctx context.Context, ids []uint) ([]models.Furniture, error) {
	if len(ids) == 0 {
		return []models.Furniture{}, nil
	}
	if len(ids) > maxBatchSize {
		return nil, apperrors.Validationf("at most %d ids may be requested at once", maxBatchSize)
	}

	return s.loadOrdered(s.db.WithContext(ctx), ids)
}

func (s *CatalogService) loadOrdered(db *gorm.DB, ids []uint) ([]models.Furniture, error) {
	var items []models.Furniture
	if err := preloadFurniture(db).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to load furniture")
	}

	byID := make(map[uint]models.Furniture, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	ordered := make([]models.Furniture, 0, len(items))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			ordered = append(ordered, item)
			delete(byID, id)
		}
	}
	return ordered, nil
}

// ListFurniture returns one page of the catalog after filtering and sorting.
func (s *CatalogService) ListFurniture(ctx context.Context, params FurnitureListParams) (*FurniturePage, error) {
	pagination := params.PaginationParams.Normalize(s.cfg.DefaultPerPage, s.cfg.MaxPerPage)

	query, empty, err := s.filteredQuery(ctx, params.CatalogFilters)
	if err != nil {
		return nil, err
	}
	if empty {
		return newFurniturePage(nil, 0, pagination), nil
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to count furniture")
	}

	var items []models.Furniture
	err = preloadFurniture(query.Session(&gorm.Session{})).
		Order(orderClause(FurnitureSort(pagination.Sort), pagination.Order)).
		Offset(pagination.Offset()).
		Limit(pagination.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list furniture")
	}

	return newFurniturePage(items, total, pagination), nil
}

// BackfillSearchNames fills search_name for rows stored before the column
// existed. It returns the number of rows updated.
func (s *CatalogService) BackfillSearchNames(ctx context.Context) (int, error) {
	var rows []models.Furniture
	err := s.db.WithContext(ctx).
		Select("id", "name").
		Where("search_name = ''").
		Find(&rows).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to load furniture names")
	}

	for _, row := range rows {
		err := s.db.WithContext(ctx).
			Model(&models.Furniture{}).
			Where("id = ?", row.ID).
			UpdateColumn("search_name", NormalizeQuery(row.Name)).Error
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to backfill search name")
		}
	}
	return len(rows), nil
}

// orderClause maps a sort key to SQL. Unknown keys sort newest first; ties
// fall back to id so pages are stable.
func orderClause(sort FurnitureSort, order string) string {
	switch sort {
	case SortName:
		return directed("furniture.name", order, "ASC") + ", furniture.id ASC"
	case SortPrice:
		return directed("furniture.price", order, "ASC") + ", furniture.id ASC"
	default:
		direction := directed("", order, "DESC")
		return "furniture.created_at" + direction + ", furniture.id" + direction
	}
}

func directed(column, order, fallback string) string {
	direction := strings.ToUpper(order)
	if direction != "ASC" && direction != "DESC" {
		direction = fallback
	}
	return column + " " + direction
}

// filteredQuery builds the furniture query for the given filters. empty is
// true when the filters can match nothing (e.g. a user with no favorites).
func (s *CatalogService) filteredQuery(ctx context.Context, filters CatalogFilters) (query *gorm.DB, empty bool, err error) {
	query = s.db.WithContext(ctx).Model(&models.Furniture{})

	if slug := strings.TrimSpace(filters.CategorySlug); slug != "" {
		sub := s.db.Model(&models.FurnitureCategory{}).
			Select("furniture_categories.furniture_id").
			Joins("JOIN categories ON categories.id = furniture_categories.category_id").
			Where("categories.slug = ?", slug)
		query = query.Where("furniture.id IN (?)", sub)
	}

	if slugs := uniqueStrings(filters.TagSlugs); len(slugs) > 0 {
		// Every listed tag must be present.
		sub := s.db.Model(&models.FurnitureTag{}).
			Select("furniture_tags.furniture_id").
			Joins("JOIN tags ON tags.id = furniture_tags.tag_id").
			Where("tags.slug IN ?", slugs).
			Group("furniture_tags.furniture_id").
			Having("COUNT(DISTINCT tags.id) = ?", len(slugs))
		query = query.Where("furniture.id IN (?)", sub)
	}

	if filters.FavoritesOnly {
		if filters.Actor == nil || filters.Actor.UserID == 0 {
			return nil, false, apperrors.Unauthorized("sign in to filter by favorites")
		}
		ids, err := s.favorites.FavoriteIDs(ctx, filters.Actor.UserID)
		if err != nil {
			return nil, false, apperrors.Wrap(err, "failed to load favorites")
		}
		if len(ids) == 0 {
			return nil, true, nil
		}
		query = query.Where("furniture.id IN ?", ids)
	}

	return query, false, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
