// internal/handlers/furniture.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/prop-catalog/internal/i18n"
	"github.com/javajoker/prop-catalog/internal/models"
	"github.com/javajoker/prop-catalog/internal/services"
	"github.com/javajoker/prop-catalog/internal/utils"
)

type FurnitureHandler struct {
	catalogService   *services.CatalogService
	searchService    *services.SearchService
	duplicateService *services.DuplicateService
}

func NewFurnitureHandler(catalogService *services.CatalogService, searchService *services.SearchService, duplicateService *services.DuplicateService) *FurnitureHandler {
	return &FurnitureHandler{
		catalogService:   catalogService,
		searchService:    searchService,
		duplicateService: duplicateService,
	}
}

// GET /furniture
func (h *FurnitureHandler) ListFurniture(c *gin.Context) {
	params := services.FurnitureListParams{
		PaginationParams: utils.GetPaginationParams(c),
		CatalogFilters: services.CatalogFilters{
			CategorySlug:  strings.TrimSpace(c.Query("category")),
			TagSlugs:      slugList(c.Query("tags")),
			FavoritesOnly: queryBool(c, "favorites_only"),
			Actor:         optionalActor(c),
		},
	}

	page, err := h.catalogService.ListFurniture(c.Request.Context(), params)
	if err != nil {
		utils.ListErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, furniturePagination(page), nil)
}

// GET /furniture/search
func (h *FurnitureHandler) SearchFurniture(c *gin.Context) {
	params := services.SearchParams{
		Query:            c.Query("q"),
		PaginationParams: utils.GetPaginationParams(c),
		CategorySlug:     strings.TrimSpace(c.Query("category")),
		FavoritesOnly:    queryBool(c, "favorites_only"),
		Actor:            optionalActor(c),
	}

	result, err := h.searchService.Search(c.Request.Context(), params)
	if err != nil {
		utils.ListErrorResponse(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	meta := gin.H{}
	if result.Meta != nil {
		meta["search"] = result.Meta
		meta["message"] = i18n.T(lang, i18n.KeySearchAlso, strings.Join(result.Meta.ExpandedTerms, ", "))
	} else if result.Total == 0 {
		meta["message"] = i18n.T(lang, i18n.KeySearchNoResults)
	}

	utils.PaginatedResponse(c, furniturePagination(result.FurniturePage), meta)
}

// GET /furniture/check-duplicates
//
// Advisory only: short names and lookup failures both answer with an empty list.
func (h *FurnitureHandler) CheckDuplicates(c *gin.Context) {
	candidates, err := h.duplicateService.FindCandidates(
		c.Request.Context(),
		c.Query("name"),
		optionalUint(c, "category_id"),
		optionalUint(c, "exclude_id"),
	)
	if err != nil {
		logrus.WithError(err).WithField("name", c.Query("name")).Warn("Duplicate check failed")
		candidates = []services.DuplicateCandidate{}
	}

	utils.SuccessResponse(c, candidates)
}

// GET /furniture/batch
func (h *FurnitureHandler) GetFurnitureBatch(c *gin.Context) {
	ids, ok := idList(c.Query("ids"))
	if !ok {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "ids"), nil)
		return
	}

	items, err := h.catalogService.GetFurnitureBatch(c.Request.Context(), ids)
	if err != nil {
		utils.ListErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, items)
}

// GET /furniture/:id
func (h *FurnitureHandler) GetFurniture(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.catalogService.GetFurniture(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, item)
}

// POST /admin/furniture
func (h *FurnitureHandler) CreateFurniture(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var payload models.FurniturePayload
	if !bindJSON(c, &payload) {
		return
	}

	item, err := h.catalogService.SaveFurniture(c.Request.Context(), actor, nil, payload)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(utils.GetLangFromContext(c), i18n.KeyFurnitureCreated),
		"furniture": item,
	})
}

// PUT /admin/furniture/:id
func (h *FurnitureHandler) UpdateFurniture(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var payload models.FurniturePayload
	if !bindJSON(c, &payload) {
		return
	}

	item, err := h.catalogService.SaveFurniture(c.Request.Context(), actor, &id, payload)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":   i18n.T(utils.GetLangFromContext(c), i18n.KeyFurnitureUpdated),
		"furniture": item,
	})
}

// DELETE /admin/furniture/:id
func (h *FurnitureHandler) DeleteFurniture(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteFurniture(c.Request.Context(), actor, id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyFurnitureDeleted),
	})
}

func furniturePagination(page *services.FurniturePage) utils.PaginationResult {
	params := utils.PaginationParams{Page: page.Page, PerPage: page.PerPage}
	return utils.CreatePaginationResult(page.Items, page.Total, params)
}
