// internal/services/submission_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/prop-catalog/internal/apperrors"
	"github.com/javajoker/prop-catalog/internal/config"
	"github.com/javajoker/prop-catalog/internal/models"
	"github.com/javajoker/prop-catalog/internal/utils"
)

type SubmissionService struct {
	db            *gorm.DB
	catalog       *CatalogService
	duplicates    *DuplicateService
	notifications *NotificationService
	cfg           config.CatalogConfig
}

type CreateSubmissionRequest struct {
	Type        models.SubmissionType   `json:"type" validate:"required,oneof=new edit"`
	FurnitureID *uint                   `json:"furniture_id,omitempty" validate:"omitempty,gt=0"`
	Payload     models.FurniturePayload `json:"payload"`
}

type UpdateSubmissionRequest struct {
	Payload models.FurniturePayload `json:"payload"`
}

type ReviewRequest struct {
	AdminNotes string `json:"admin_notes" validate:"max=2000"`
}

// SubmissionDraft is a saved submission plus the advisory duplicate check.
type SubmissionDraft struct {
	Submission *models.Submission    `json:"submission"`
	Duplicates []DuplicateCandidate `json:"duplicates"`
}

type ReviewResult struct {
	Submission *models.Submission `json:"submission"`
	Furniture  *models.Furniture  `json:"furniture,omitempty"`
}

type SubmissionFilter struct {
	utils.PaginationParams
	Status *models.SubmissionStatus
	Type   *models.SubmissionType
}

type SubmissionPage struct {
	Items      []models.Submission `json:"items"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PerPage    int                 `json:"per_page"`
	TotalPages int                 `json:"total_pages"`
}

// NewSubmissionService wires the pipeline. notifications may be nil, in
// which case submitters are not told about review decisions.
func NewSubmissionService(db *gorm.DB, catalog *CatalogService, duplicates *DuplicateService, notifications *NotificationService, cfg config.CatalogConfig) *SubmissionService {
	return &SubmissionService{
		db:            db,
		catalog:       catalog,
		duplicates:    duplicates,
		notifications: notifications,
		cfg:           cfg,
	}
}

// Create stores a pending submission. The catalog is not touched until a
// reviewer approves it.
func (s *SubmissionService) Create(ctx context.Context, actor models.Actor, req *CreateSubmissionRequest) (*SubmissionDraft, error) {
	if actor.UserID == 0 {
		return nil, apperrors.Unauthorized("sign in to submit furniture")
	}

	req.Payload.Normalize()
	if err := utils.Validate(req); err != nil {
		return nil, err
	}

	submission := &models.Submission{
		UserID:      actor.UserID,
		Type:        req.Type,
		FurnitureID: req.FurnitureID,
		Payload:     req.Payload,
		Status:      models.SubmissionStatusPending,
	}
	if !submission.Consistent() {
		if submission.Type == models.SubmissionTypeEdit {
			return nil, apperrors.ValidationWithDetails("furniture_id is required for edit submissions",
				[]utils.ValidationError{{Field: "furniture_id", Message: "furniture_id is required", Tag: "required"}})
		}
		return nil, apperrors.ValidationWithDetails("furniture_id must be empty for new submissions",
			[]utils.ValidationError{{Field: "furniture_id", Message: "furniture_id must be empty", Tag: "excluded"}})
	}

	db := s.db.WithContext(ctx)
	if submission.FurnitureID != nil {
		var count int64
		if err := db.Model(&models.Furniture{}).Where("id = ?", *submission.FurnitureID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(err, "failed to check furniture")
		}
		if count == 0 {
			return nil, apperrors.NotFoundf("furniture %d not found", *submission.FurnitureID)
		}
	}
	if err := CheckPayloadReferences(db, submission.Payload); err != nil {
		return nil, err
	}

	if err := db.Create(submission).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to create submission")
	}

	logrus.WithFields(logrus.Fields{
		"submission_id": submission.ID,
		"user_id":       actor.UserID,
		"type":          submission.Type,
	}).Info("Submission created")

	return &SubmissionDraft{
		Submission: submission,
		Duplicates: s.duplicateHints(ctx, submission),
	}, nil
}

// UpdateDraft replaces the payload of the caller's own pending submission.
func (s *SubmissionService) UpdateDraft(ctx context.Context, actor models.Actor, id uint, req *UpdateSubmissionRequest) (*SubmissionDraft, error) {
	if actor.UserID == 0 {
		return nil, apperrors.Unauthorized("sign in to edit submissions")
	}

	req.Payload.Normalize()
	if err := utils.Validate(req); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	submission, err := s.load(db, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(submission.UserID) {
		return nil, apperrors.Forbidden("only the submitter can edit this submission")
	}
	if submission.Status != models.SubmissionStatusPending {
		return nil, apperrors.Conflictf("submission %d is already %s", id, submission.Status)
	}
	if err := CheckPayloadReferences(db, req.Payload); err != nil {
		return nil, err
	}

	result := db.Model(&models.Submission{}).
		Where("id = ? AND user_id = ? AND status = ?", id, actor.UserID, models.SubmissionStatusPending).
		Updates(map[string]interface{}{
			"payload":    req.Payload,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, "failed to update submission")
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.Conflictf("submission %d is no longer pending", id)
	}

	submission, err = s.load(db, id)
	if err != nil {
		return nil, err
	}

	return &SubmissionDraft{
		Submission: submission,
		Duplicates: s.duplicateHints(ctx, submission),
	}, nil
}

// Cancel deletes the caller's own pending submission.
func (s *SubmissionService) Cancel(ctx context.Context, actor models.Actor, id uint) error {
	if actor.UserID == 0 {
		return apperrors.Unauthorized("sign in to cancel submissions")
	}

	db := s.db.WithContext(ctx)
	submission, err := s.load(db, id)
	if err != nil {
		return err
	}
	if !actor.Owns(submission.UserID) {
		return apperrors.Forbidden("only the submitter can cancel this submission")
	}
	if submission.Status != models.SubmissionStatusPending {
		return apperrors.Conflictf("submission %d is already %s", id, submission.Status)
	}

	result := db.Where("id = ? AND user_id = ? AND status = ?", id, actor.UserID, models.SubmissionStatusPending).
		Delete(&models.Submission{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "failed to cancel submission")
	}
	if result.RowsAffected == 0 {
		return apperrors.Conflictf("submission %d is no longer pending", id)
	}

	logrus.WithFields(logrus.Fields{
		"submission_id": id,
		"user_id":       actor.UserID,
	}).Info("Submission cancelled")
	return nil
}

// Approve flips a pending submission to approved and applies its payload to
// the catalog in the same transaction. If the payload no longer applies the
// submission stays pending.
func (s *SubmissionService) Approve(ctx context.Context, actor models.Actor, id uint, req *ReviewRequest) (*ReviewResult, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only staff can review submissions")
	}
	if err := utils.Validate(req); err != nil {
		return nil, err
	}

	var result ReviewResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submission, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if submission.Status != models.SubmissionStatusPending {
			return apperrors.Conflictf("submission %d is already %s", id, submission.Status)
		}
		if !submission.Consistent() {
			return apperrors.Validationf("submission %d has an inconsistent furniture reference", id)
		}

		if err := s.transition(tx, actor, id, models.SubmissionStatusApproved, req.AdminNotes); err != nil {
			return err
		}

		var before models.JSONB
		if target := submission.TargetID(); target != nil {
			var existing models.Furniture
			if err := preloadFurniture(tx).First(&existing, *target).Error; err == nil {
				before = furnitureSnapshot(&existing)
			}
		}

		furniture, err := s.catalog.ApplyFurniturePayloadTx(tx, submission.TargetID(), submission.Payload)
		if err != nil {
			return err
		}

		newValues := furnitureSnapshot(furniture)
		newValues["submission_id"] = id
		newValues["furniture_id"] = furniture.ID
		if err := createAuditLog(tx, actor, models.AuditActionApproveSubmission, "submission", id, before, newValues); err != nil {
			return err
		}

		submission, err = s.load(tx, id)
		if err != nil {
			return err
		}
		if err := s.notifyReview(tx, submission); err != nil {
			return err
		}
		result = ReviewResult{Submission: submission, Furniture: furniture}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"submission_id": id,
		"furniture_id":  result.Furniture.ID,
		"admin_id":      actor.UserID,
	}).Info("Submission approved")

	return &result, nil
}

// Reject closes a pending submission without touching the catalog.
func (s *SubmissionService) Reject(ctx context.Context, actor models.Actor, id uint, req *ReviewRequest) (*ReviewResult, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only staff can review submissions")
	}
	if err := utils.Validate(req); err != nil {
		return nil, err
	}

	var result ReviewResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submission, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if submission.Status != models.SubmissionStatusPending {
			return apperrors.Conflictf("submission %d is already %s", id, submission.Status)
		}

		if err := s.transition(tx, actor, id, models.SubmissionStatusRejected, req.AdminNotes); err != nil {
			return err
		}
		if err := createAuditLog(tx, actor, models.AuditActionRejectSubmission, "submission", id, nil,
			models.JSONB{"admin_notes": req.AdminNotes}); err != nil {
			return err
		}

		submission, err = s.load(tx, id)
		if err != nil {
			return err
		}
		if err := s.notifyReview(tx, submission); err != nil {
			return err
		}
		result = ReviewResult{Submission: submission}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"submission_id": id,
		"admin_id":      actor.UserID,
	}).Info("Submission rejected")

	return &result, nil
}

func (s *SubmissionService) notifyReview(tx *gorm.DB, submission *models.Submission) error {
	if s.notifications == nil {
		return nil
	}
	return s.notifications.NotifyReviewTx(tx, submission)
}

// transition moves a pending submission to status. The status check is part
// of the UPDATE, so of two concurrent reviews exactly one succeeds.
func (s *SubmissionService) transition(tx *gorm.DB, actor models.Actor, id uint, status models.SubmissionStatus, notes string) error {
	now := time.Now()
	var adminNotes interface{}
	if notes = strings.TrimSpace(notes); notes != "" {
		adminNotes = notes
	}

	result := tx.Model(&models.Submission{}).
		Where("id = ? AND status = ?", id, models.SubmissionStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": actor.UserID,
			"reviewed_at": now,
			"admin_notes": adminNotes,
			"updated_at":  now,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "failed to update submission status")
	}
	if result.RowsAffected == 0 {
		return apperrors.Conflictf("submission %d is no longer pending", id)
	}
	return nil
}

// Get returns a submission to its submitter or to staff.
func (s *SubmissionService) Get(ctx context.Context, actor models.Actor, id uint) (*models.Submission, error) {
	submission, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Owns(submission.UserID) {
		return nil, apperrors.Forbidden("you cannot view this submission")
	}
	return submission, nil
}

// ListMine returns the caller's submissions, newest first.
func (s *SubmissionService) ListMine(ctx context.Context, actor models.Actor, filter SubmissionFilter) (*SubmissionPage, error) {
	if actor.UserID == 0 {
		return nil, apperrors.Unauthorized("sign in to view your submissions")
	}
	query := s.db.WithContext(ctx).Model(&models.Submission{}).Where("user_id = ?", actor.UserID)
	return s.list(query, filter, "created_at DESC")
}

// ListForReview is the staff queue, oldest first. Status defaults to pending.
func (s *SubmissionService) ListForReview(ctx context.Context, actor models.Actor, filter SubmissionFilter) (*SubmissionPage, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only staff can view the review queue")
	}
	if filter.Status == nil {
		pending := models.SubmissionStatusPending
		filter.Status = &pending
	}
	query := s.db.WithContext(ctx).Model(&models.Submission{})
	return s.list(query, filter, "created_at ASC")
}

func (s *SubmissionService) list(query *gorm.DB, filter SubmissionFilter, order string) (*SubmissionPage, error) {
	if filter.Status != nil {
		if !filter.Status.Valid() {
			return nil, apperrors.Validationf("unknown submission status %q", *filter.Status)
		}
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		if !filter.Type.Valid() {
			return nil, apperrors.Validationf("unknown submission type %q", *filter.Type)
		}
		query = query.Where("type = ?", *filter.Type)
	}

	pagination := filter.PaginationParams.Normalize(s.cfg.DefaultPerPage, s.cfg.MaxPerPage)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to count submissions")
	}

	var items []models.Submission
	err := query.Session(&gorm.Session{}).
		Order(order).
		Order("id ASC").
		Offset(pagination.Offset()).
		Limit(pagination.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list submissions")
	}
	if items == nil {
		items = []models.Submission{}
	}

	return &SubmissionPage{
		Items:      items,
		Total:      total,
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		TotalPages: utils.TotalPages(total, pagination.PerPage),
	}, nil
}

func (s *SubmissionService) load(db *gorm.DB, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := db.First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("submission %d not found", id)
		}
		return nil, apperrors.Wrap(err, "failed to load submission")
	}
	return &submission, nil
}

// duplicateHints never fails: the check is advisory.
func (s *SubmissionService) duplicateHints(ctx context.Context, submission *models.Submission) []DuplicateCandidate {
	if s.duplicates == nil {
		return []DuplicateCandidate{}
	}

	var categoryID *uint
	if len(submission.Payload.CategoryIDs) > 0 {
		categoryID = &submission.Payload.CategoryIDs[0]
	}

	candidates, err := s.duplicates.FindCandidates(ctx, submission.Payload.Name, categoryID, submission.TargetID())
	if err != nil {
		logrus.WithError(err).WithField("submission_id", submission.ID).Warn("Duplicate check failed")
		return []DuplicateCandidate{}
	}
	return candidates
}
