// internal/models/submission.go
package models

import (
	"time"
)

// Submission is a member's proposal to add or correct a furniture item.
// FurnitureID is set exactly when Type is edit.
type Submission struct {
	BaseModel
	UserID      uint             `json:"user_id" gorm:"not null;index"`
	Type        SubmissionType   `json:"type" gorm:"type:varchar(10);not null;index"`
	FurnitureID *uint            `json:"furniture_id" gorm:"index"`
	Payload     FurniturePayload `json:"payload" gorm:"type:jsonb;not null"`
	Status      SubmissionStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedBy  *uint            `json:"reviewed_by"`
	AdminNotes  *string          `json:"admin_notes" gorm:"type:text"`
	ReviewedAt  *time.Time       `json:"reviewed_at"`
}

// Consistent checks the type/furniture reference invariant.
func (s *Submission) Consistent() bool {
	if s.Type == SubmissionTypeEdit {
		return s.FurnitureID != nil
	}
	return s.Type == SubmissionTypeNew && s.FurnitureID == nil
}

// TargetID is the catalog write target: nil creates, non-nil replaces.
func (s *Submission) TargetID() *uint {
	if s.Type == SubmissionTypeEdit {
		return s.FurnitureID
	}
	return nil
}
