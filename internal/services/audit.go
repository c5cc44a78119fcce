// internal/services/audit.go
package services

import (
	"gorm.io/gorm"

	"github.com/javajoker/prop-catalog/internal/apperrors"
	"github.com/javajoker/prop-catalog/internal/models"
)

// createAuditLog writes the entry with tx so it commits or rolls back together
// with the action it describes.
func createAuditLog(tx *gorm.DB, actor models.Actor, action, resourceType string, resourceID uint, oldValues, newValues models.JSONB) error {
	entry := &models.AuditLog{
		UserID:       actor.UserID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
	}
	if err := tx.Create(entry).Error; err != nil {
		return apperrors.Wrap(err, "failed to write audit log")
	}
	return nil
}

func furnitureSnapshot(f *models.Furniture) models.JSONB {
	if f == nil {
		return nil
	}
	snapshot := models.JSONB{
		"name":         f.Name,
		"price":        f.Price,
		"category_ids": f.CategoryIDs(),
		"tag_ids":      f.TagIDs(),
	}
	if f.ImageURL != nil {
		snapshot["image_url"] = *f.ImageURL
	}
	return snapshot
}
