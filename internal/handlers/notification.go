// internal/handlers/notification.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/prop-catalog/internal/services"
	"github.com/javajoker/prop-catalog/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GET /notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	page, err := h.notificationService.List(c.Request.Context(), actor, queryBool(c, "unread_only"), utils.GetPaginationParams(c))
	if err != nil {
		utils.ListErrorResponse(c, err)
		return
	}

	params := utils.PaginationParams{Page: page.Page, PerPage: page.PerPage}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(page.Items, page.Total, params), nil)
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkRead(c.Request.Context(), actor, id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, notification)
}
