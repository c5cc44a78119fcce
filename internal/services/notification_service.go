// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"gorm.io/gorm"

	"github.com/javajoker/prop-catalog/internal/apperrors"
	"github.com/javajoker/prop-catalog/internal/config"
	"github.com/javajoker/prop-catalog/internal/models"
	"github.com/javajoker/prop-catalog/internal/utils"
)

type NotificationService struct {
	db  *gorm.DB
	cfg config.CatalogConfig
}

type NotificationTemplate struct {
	Title string
	Body  string
}

type NotificationPage struct {
	Items      []models.Notification `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PerPage    int                   `json:"per_page"`
	TotalPages int                   `json:"total_pages"`
}

var notificationTemplates = map[models.NotificationType]NotificationTemplate{
	models.NotificationSubmissionApproved: {
		Title: `Your submission "{{.Name}}" was approved`,
		Body: `{{if eq .Type "edit"}}Your correction to "{{.Name}}" is now live in the catalog.` +
			`{{else}}"{{.Name}}" has been added to the catalog.{{end}}` +
			`{{if .Notes}} Reviewer notes: {{.Notes}}{{end}}`,
	},
	models.NotificationSubmissionRejected: {
		Title: `Your submission "{{.Name}}" was not accepted`,
		Body:  `A reviewer declined your submission.{{if .Notes}} Reviewer notes: {{.Notes}}{{end}}`,
	},
}

func NewNotificationService(db *gorm.DB, cfg config.CatalogConfig) *NotificationService {
	return &NotificationService{db: db, cfg: cfg}
}

// NotifyReviewTx tells the submitter how their submission was decided. It
// writes through tx so the message exists only if the decision commits.
func (s *NotificationService) NotifyReviewTx(tx *gorm.DB, submission *models.Submission) error {
	var kind models.NotificationType
	switch submission.Status {
	case models.SubmissionStatusApproved:
		kind = models.NotificationSubmissionApproved
	case models.SubmissionStatusRejected:
		kind = models.NotificationSubmissionRejected
	default:
		return fmt.Errorf("submission %d is still %s", submission.ID, submission.Status)
	}

	data := map[string]interface{}{
		"Name":  submission.Payload.Name,
		"Type":  string(submission.Type),
		"Notes": "",
	}
	if submission.AdminNotes != nil {
		data["Notes"] = *submission.AdminNotes
	}

	tmpl := notificationTemplates[kind]
	title, err := renderTemplate(tmpl.Title, data)
	if err != nil {
		return apperrors.Wrap(err, "failed to render notification title")
	}
	message, err := renderTemplate(tmpl.Body, data)
	if err != nil {
		return apperrors.Wrap(err, "failed to render notification message")
	}

	submissionID := submission.ID
	notification := &models.Notification{
		UserID:              submission.UserID,
		Type:                kind,
		Title:               title,
		Message:             message,
		RelatedResourceType: "submission",
		RelatedResourceID:   &submissionID,
	}
	if err := tx.Create(notification).Error; err != nil {
		return apperrors.Wrap(err, "failed to create notification")
	}
	return nil
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor models.Actor, unreadOnly bool, params utils.PaginationParams) (*NotificationPage, error) {
	if actor.UserID == 0 {
		return nil, apperrors.Unauthorized("sign in to read notifications")
	}
	params = params.Normalize(s.cfg.DefaultPerPage, s.cfg.MaxPerPage)

	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", actor.UserID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to count notifications")
	}

	items := []models.Notification{}
	if err := utils.ApplyPagination(query.Session(&gorm.Session{}), params).
		Order("created_at DESC").Order("id DESC").
		Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to list notifications")
	}

	return &NotificationPage{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: utils.TotalPages(total, params.PerPage),
	}, nil
}

// MarkRead stamps read_at once; marking an already read notification is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, actor.UserID).First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("notification %d not found", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load notification")
	}

	if notification.ReadAt == nil {
		now := time.Now()
		if err := s.db.WithContext(ctx).Model(&notification).
			Where("read_at IS NULL").
			Update("read_at", now).Error; err != nil {
			return nil, apperrors.Wrap(err, "failed to mark notification read")
		}
		notification.ReadAt = &now
	}
	return &notification, nil
}

func renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("notification").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
