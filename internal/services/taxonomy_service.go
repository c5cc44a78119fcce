// internal/services/taxonomy_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/prop-catalog/internal/apperrors"
	"github.com/javajoker/prop-catalog/internal/models"
	"github.com/javajoker/prop-catalog/internal/utils"
)

type TaxonomyService struct {
	db *gorm.DB
}

type CategoryRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Slug      string `json:"slug,omitempty" validate:"omitempty,max=100,slug"`
	Icon      string `json:"icon,omitempty" validate:"max=50"`
	SortOrder int    `json:"sort_order"`
}

type TagGroupRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Slug      string `json:"slug,omitempty" validate:"omitempty,max=100,slug"`
	Color     string `json:"color,omitempty" validate:"max=20"`
	SortOrder int    `json:"sort_order"`
}

type TagRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Slug       string `json:"slug,omitempty" validate:"omitempty,max=100,slug"`
	Color      string `json:"color,omitempty" validate:"max=20"`
	TagGroupID *uint  `json:"tag_group_id,omitempty" validate:"omitempty,gt=0"`
}

func NewTaxonomyService(db *gorm.DB) *TaxonomyService {
	return &TaxonomyService{db: db}
}

// Categories

func (s *TaxonomyService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("sort_order ASC").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to list categories")
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *TaxonomyService) SaveCategory(ctx context.Context, actor models.Actor, id *uint, req *CategoryRequest) (*models.Category, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only staff can manage categories")
	}
	slug, err := prepareNamed(&req.Name, &req.Slug, req)
	if err != nil {
		return nil, err
	}

	var category models.Category
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if id != nil {
			if err := tx.First(&category, *id).Error; err != nil {
				return notFoundOr(err, "category", *id)
			}
		}
		if err := ensureSlugFree(tx, &models.Category{}, slug, id); err != nil {
			return err
		}

		category.Name = req.Name
		category.Slug = slug
		category.Icon = strings.TrimSpace(req.Icon)
		category.SortOrder = req.SortOrder
		if err := tx.Save(&category).Error; err != nil {
			return apperrors.Wrap(err, "failed to save category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory refuses while furniture still uses the category, since an
// item may not be left without a primary category.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, actor models.Actor, id uint) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("only staff can manage categories")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return notFoundOr(err, "category", id)
		}

		var inUse int64
		if err := tx.Model(&models.FurnitureCategory{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
			return apperrors.Wrap(err, "failed to check category usage")
		}
		if inUse > 0 {
			return apperrors.Conflictf("category %q is used by %d furniture item(s)", category.Slug, inUse)
		}

		if err := tx.Delete(&category).Error; err != nil {
			return apperrors.Wrap(err, "failed to delete category")
		}
		logrus.WithFields(logrus.Fields{"category_id": id, "admin_id": actor.UserID}).Info("Category deleted")
		return nil
	})
}

// Tag groups

// ListTagGroups returns every group with its tags, by sort order.
func (s *TaxonomyService) ListTagGroups(ctx context.Context) ([]models.TagGroup, error) {
	var groups []models.TagGroup
	err := s.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Order("sort_order ASC").
		Order("name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tag groups")
	}
	if groups == nil {
		groups = []models.TagGroup{}
	}
	return groups, nil
}

func (s *TaxonomyService) SaveTagGroup(ctx context.Context, actor models.Actor, id *uint, req *TagGroupRequest) (*models.TagGroup, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only staff can manage tag groups")
	}
	slug, err := prepareNamed(&req.Name, &req.Slug, req)
	if err != nil {
		return nil, err
	}

	var group models.TagGroup
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if id != nil {
			if err := tx.First(&group, *id).Error; err != nil {
				return notFoundOr(err, "tag group", *id)
			}
		}
		if err := ensureSlugFree(tx, &models.TagGroup{}, slug, id); err != nil {
			return err
		}

		group.Name = req.Name
		group.Slug = slug
		group.Color = strings.TrimSpace(req.Color)
		group.SortOrder = req.SortOrder
		if err := tx.Omit(clause.Associations).Save(&group).Error; err != nil {
			return apperrors.Wrap(err, "failed to save tag group")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// DeleteTagGroup detaches the group's tags and removes the group.
func (s *TaxonomyService) DeleteTagGroup(ctx context.Context, actor models.Actor, id uint) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("only staff can manage tag groups")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.TagGroup
		if err := tx.First(&group, id).Error; err != nil {
			return notFoundOr(err, "tag group", id)
		}

		if err := tx.Model(&models.Tag{}).Where("tag_group_id = ?", id).Update("tag_group_id", nil).Error; err != nil {
			return apperrors.Wrap(err, "failed to detach tags")
		}
		if err := tx.Delete(&group).Error; err != nil {
			return apperrors.Wrap(err, "failed to delete tag group")
		}
		logrus.WithFields(logrus.Fields{"tag_group_id": id, "admin_id": actor.UserID}).Info("Tag group deleted")
		return nil
	})
}

// Tags

// ListTags returns tags with their group, optionally limited to one group slug.
func (s *TaxonomyService) ListTags(ctx context.Context, groupSlug string) ([]models.Tag, error) {
	query := s.db.WithContext(ctx).Preload("TagGroup")
	if groupSlug = strings.TrimSpace(groupSlug); groupSlug != "" {
		query = query.Where("tag_group_id IN (?)",
			s.db.Model(&models.TagGroup{}).Select("id").Where("slug = ?", groupSlug))
	}

	var tags []models.Tag
	if err := query.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to list tags")
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

func (s *TaxonomyService) SaveTag(ctx context.Context, actor models.Actor, id *uint, req *TagRequest) (*models.Tag, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only staff can manage tags")
	}
	slug, err := prepareNamed(&req.Name, &req.Slug, req)
	if err != nil {
		return nil, err
	}

	var tag models.Tag
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if id != nil {
			if err := tx.First(&tag, *id).Error; err != nil {
				return notFoundOr(err, "tag", *id)
			}
		}
		if err := ensureSlugFree(tx, &models.Tag{}, slug, id); err != nil {
			return err
		}
		if req.TagGroupID != nil {
			var count int64
			if err := tx.Model(&models.TagGroup{}).Where("id = ?", *req.TagGroupID).Count(&count).Error; err != nil {
				return apperrors.Wrap(err, "failed to check tag group")
			}
			if count == 0 {
				return apperrors.Validationf("unknown tag group id: %d", *req.TagGroupID)
			}
		}

		tag.Name = req.Name
		tag.Slug = slug
		tag.Color = strings.TrimSpace(req.Color)
		tag.TagGroupID = req.TagGroupID
		tag.TagGroup = nil
		if err := tx.Omit(clause.Associations).Save(&tag).Error; err != nil {
			return apperrors.Wrap(err, "failed to save tag")
		}
		if err := tx.Preload("TagGroup").First(&tag, tag.ID).Error; err != nil {
			return apperrors.Wrap(err, "failed to reload tag")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag removes the tag from every furniture item and deletes it.
func (s *TaxonomyService) DeleteTag(ctx context.Context, actor models.Actor, id uint) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("only staff can manage tags")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.First(&tag, id).Error; err != nil {
			return notFoundOr(err, "tag", id)
		}
		if err := tx.Where("tag_id = ?", id).Delete(&models.FurnitureTag{}).Error; err != nil {
			return apperrors.Wrap(err, "failed to detach tag from furniture")
		}
		if err := tx.Delete(&tag).Error; err != nil {
			return apperrors.Wrap(err, "failed to delete tag")
		}
		logrus.WithFields(logrus.Fields{"tag_id": id, "admin_id": actor.UserID}).Info("Tag deleted")
		return nil
	})
}

// prepareNamed trims the name, derives the slug when none was given and
// validates req.
func prepareNamed(name, slug *string, req interface{}) (string, error) {
	*name = strings.TrimSpace(*name)
	*slug = strings.TrimSpace(*slug)
	if *slug == "" {
		*slug = Slugify(*name)
	}
	if err := utils.Validate(req); err != nil {
		return "", err
	}
	if *slug == "" {
		return "", apperrors.Validation("a slug could not be derived from the name; supply one")
	}
	return *slug, nil
}

func ensureSlugFree(tx *gorm.DB, model interface{}, slug string, exceptID *uint) error {
	query := tx.Model(model).Where("slug = ?", slug)
	if exceptID != nil {
		query = query.Where("id <> ?", *exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(err, "failed to check slug")
	}
	if count > 0 {
		return apperrors.Conflictf("slug %q is already in use", slug)
	}
	return nil
}

func notFoundOr(err error, kind string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFoundf("%s %d not found", kind, id)
	}
	return apperrors.Wrap(err, "failed to load "+kind)
}
