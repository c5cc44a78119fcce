// internal/handlers/taxonomy.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/prop-catalog/internal/i18n"
	"github.com/javajoker/prop-catalog/internal/models"
	"github.com/javajoker/prop-catalog/internal/services"
	"github.com/javajoker/prop-catalog/internal/utils"
)

type TaxonomyHandler struct {
	taxonomyService *services.TaxonomyService
}

func NewTaxonomyHandler(taxonomyService *services.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomyService: taxonomyService}
}

// GET /categories
func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	categories, err := h.taxonomyService.ListCategories(c.Request.Context())
	if err != nil {
		utils.ListErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, categories)
}

// GET /tag-groups
func (h *TaxonomyHandler) ListTagGroups(c *gin.Context) {
	groups, err := h.taxonomyService.ListTagGroups(c.Request.Context())
	if err != nil {
		utils.ListErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, groups)
}

// GET /tags
func (h *TaxonomyHandler) ListTags(c *gin.Context) {
	tags, err := h.taxonomyService.ListTags(c.Request.Context(), c.Query("group"))
	if err != nil {
		utils.ListErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, tags)
}

// POST /admin/categories, PUT /admin/categories/:id
func (h *TaxonomyHandler) SaveCategory(c *gin.Context) {
	actor, id, ok := h.target(c)
	if !ok {
		return
	}

	var req services.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.taxonomyService.SaveCategory(c.Request.Context(), actor, id, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	respondSaved(c, id, i18n.KeyCategorySaved, "category", category)
}

// DELETE /admin/categories/:id
func (h *TaxonomyHandler) DeleteCategory(c *gin.Context) {
	h.delete(c, i18n.KeyCategoryDeleted, h.taxonomyService.DeleteCategory)
}

// POST /admin/tag-groups, PUT /admin/tag-groups/:id
func (h *TaxonomyHandler) SaveTagGroup(c *gin.Context) {
	actor, id, ok := h.target(c)
	if !ok {
		return
	}

	var req services.TagGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	group, err := h.taxonomyService.SaveTagGroup(c.Request.Context(), actor, id, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	respondSaved(c, id, i18n.KeyTagGroupSaved, "tag_group", group)
}

// DELETE /admin/tag-groups/:id
func (h *TaxonomyHandler) DeleteTagGroup(c *gin.Context) {
	h.delete(c, i18n.KeyTagGroupDeleted, h.taxonomyService.DeleteTagGroup)
}

// POST /admin/tags, PUT /admin/tags/:id
func (h *TaxonomyHandler) SaveTag(c *gin.Context) {
	actor, id, ok := h.target(c)
	if !ok {
		return
	}

	var req services.TagRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := h.taxonomyService.SaveTag(c.Request.Context(), actor, id, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	respondSaved(c, id, i18n.KeyTagSaved, "tag", tag)
}

// DELETE /admin/tags/:id
func (h *TaxonomyHandler) DeleteTag(c *gin.Context) {
	h.delete(c, i18n.KeyTagDeleted, h.taxonomyService.DeleteTag)
}

// target returns the caller and, on routes with an :id, the record to update.
func (h *TaxonomyHandler) target(c *gin.Context) (models.Actor, *uint, bool) {
	actor, ok := requireActor(c)
	if !ok {
		return actor, nil, false
	}
	if c.Param("id") == "" {
		return actor, nil, true
	}
	id, ok := pathID(c)
	if !ok {
		return actor, nil, false
	}
	return actor, &id, true
}

func (h *TaxonomyHandler) delete(c *gin.Context, key string, remove func(context.Context, models.Actor, uint) error) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), actor, id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), key),
	})
}

func respondSaved(c *gin.Context, id *uint, key, name string, record interface{}) {
	body := gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), key),
		name:      record,
	}
	if id == nil {
		utils.CreatedResponse(c, body)
		return
	}
	utils.SuccessResponse(c, body)
}
