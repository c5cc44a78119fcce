// internal/handlers/admin.go
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/prop-catalog/internal/i18n"
	"github.com/javajoker/prop-catalog/internal/models"
	"github.com/javajoker/prop-catalog/internal/services"
	"github.com/javajoker/prop-catalog/internal/utils"
)

const defaultStatsDays = 30

type AdminHandler struct {
	submissionService *services.SubmissionService
	searchService     *services.SearchService
}

func NewAdminHandler(submissionService *services.SubmissionService, searchService *services.SearchService) *AdminHandler {
	return &AdminHandler{
		submissionService: submissionService,
		searchService:     searchService,
	}
}

// GET /admin/submissions
func (h *AdminHandler) GetReviewQueue(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	page, err := h.submissionService.ListForReview(c.Request.Context(), actor, submissionFilter(c))
	if err != nil {
		utils.ListErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, submissionPagination(page), nil)
}

// POST /admin/submissions/:id/approve
func (h *AdminHandler) ApproveSubmission(c *gin.Context) {
	h.review(c, i18n.KeySubmissionApproved, h.submissionService.Approve)
}

// POST /admin/submissions/:id/reject
func (h *AdminHandler) RejectSubmission(c *gin.Context) {
	h.review(c, i18n.KeySubmissionRejected, h.submissionService.Reject)
}

type reviewFunc func(ctx context.Context, actor models.Actor, id uint, req *services.ReviewRequest) (*services.ReviewResult, error)

func (h *AdminHandler) review(c *gin.Context, key string, decide reviewFunc) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	// The body is optional; notes default to empty.
	var req services.ReviewRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	result, err := decide(c.Request.Context(), actor, id, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	response := gin.H{
		"message":    i18n.T(utils.GetLangFromContext(c), key),
		"submission": result.Submission,
	}
	if result.Furniture != nil {
		response["furniture"] = result.Furniture
	}
	utils.SuccessResponse(c, response)
}

// GET /admin/search/stats
func (h *AdminHandler) GetSearchStats(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultStatsDays)))
	if err != nil || days < 1 {
		days = defaultStatsDays
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	since := time.Now().AddDate(0, 0, -days)
	queries, err := h.searchService.PopularQueries(c.Request.Context(), actor, since, limit)
	if err != nil {
		utils.ListErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, queries, gin.H{
		"days":  days,
		"since": since.UTC().Format(time.RFC3339),
	})
}
