// internal/handlers/submission.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/prop-catalog/internal/i18n"
	"github.com/javajoker/prop-catalog/internal/models"
	"github.com/javajoker/prop-catalog/internal/services"
	"github.com/javajoker/prop-catalog/internal/utils"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// POST /submissions
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req services.CreateSubmissionRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.submissionService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, draftResponse(c, i18n.KeySubmissionCreated, draft))
}

// GET /submissions
func (h *SubmissionHandler) ListMySubmissions(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	page, err := h.submissionService.ListMine(c.Request.Context(), actor, submissionFilter(c))
	if err != nil {
		utils.ListErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, submissionPagination(page), nil)
}

// GET /submissions/:id
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.Get(c.Request.Context(), actor, id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, submission)
}

// PUT /submissions/:id
func (h *SubmissionHandler) UpdateSubmission(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.UpdateSubmissionRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.submissionService.UpdateDraft(c.Request.Context(), actor, id, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, draftResponse(c, i18n.KeySubmissionUpdated, draft))
}

// POST /submissions/:id/cancel
func (h *SubmissionHandler) CancelSubmission(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.submissionService.Cancel(c.Request.Context(), actor, id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeySubmissionCancelled),
	})
}

func draftResponse(c *gin.Context, key string, draft *services.SubmissionDraft) gin.H {
	lang := utils.GetLangFromContext(c)
	response := gin.H{
		"message":    i18n.T(lang, key),
		"submission": draft.Submission,
		"duplicates": draft.Duplicates,
	}
	if len(draft.Duplicates) > 0 {
		response["warning"] = i18n.T(lang, i18n.KeySubmissionDuplicate)
	}
	return response
}

// submissionFilter reads status and type; the service rejects unknown values.
func submissionFilter(c *gin.Context) services.SubmissionFilter {
	filter := services.SubmissionFilter{PaginationParams: utils.GetPaginationParams(c)}
	if status := c.Query("status"); status != "" {
		s := models.SubmissionStatus(status)
		filter.Status = &s
	}
	if kind := c.Query("type"); kind != "" {
		t := models.SubmissionType(kind)
		filter.Type = &t
	}
	return filter
}

func submissionPagination(page *services.SubmissionPage) utils.PaginationResult {
	params := utils.PaginationParams{Page: page.Page, PerPage: page.PerPage}
	return utils.CreatePaginationResult(page.Items, page.Total, params)
}
