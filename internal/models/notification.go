// internal/models/notification.go
package models

import (
	"time"
)

type NotificationType string

const (
	NotificationSubmissionApproved NotificationType = "submission_approved"
	NotificationSubmissionRejected NotificationType = "submission_rejected"
)

// Notification is an in-app message to a member about one of their records.
type Notification struct {
	BaseModel
	UserID              uint             `json:"user_id" gorm:"not null;index"`
	Type                NotificationType `json:"type" gorm:"type:varchar(50);not null;index"`
	Title               string           `json:"title" gorm:"size:255;not null"`
	Message             string           `json:"message" gorm:"type:text;not null"`
	RelatedResourceType string           `json:"related_resource_type,omitempty" gorm:"size:50"`
	RelatedResourceID   *uint            `json:"related_resource_id"`
	ReadAt              *time.Time       `json:"read_at" gorm:"index"`
}
