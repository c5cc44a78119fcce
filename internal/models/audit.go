// internal/models/audit.go
package models

// AuditLog records one staff action on the catalog or the review queue.
type AuditLog struct {
	BaseModel
	UserID       uint   `json:"user_id" gorm:"not null;index"`
	Action       string `json:"action" gorm:"size:100;not null;index"`
	ResourceType string `json:"resource_type" gorm:"size:50;not null;index:idx_audit_resource"`
	ResourceID   uint   `json:"resource_id" gorm:"not null;index:idx_audit_resource"`
	OldValues    JSONB  `json:"old_values" gorm:"type:jsonb"`
	NewValues    JSONB  `json:"new_values" gorm:"type:jsonb"`
}

const (
	AuditActionApproveSubmission = "submission.approve"
	AuditActionRejectSubmission  = "submission.reject"
	AuditActionSaveFurniture     = "furniture.save"
	AuditActionDeleteFurniture   = "furniture.delete"
)
