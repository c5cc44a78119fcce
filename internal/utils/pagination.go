// internal/utils/pagination.go
package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PaginationParams struct {
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Sort    string `json:"sort"`
	Order   string `json:"order"`
}

type PaginationResult struct {
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
	Data       interface{} `json:"data"`
}

// GetPaginationParams reads page, per_page (or perPage), sort and order.
// Bounds are applied later by Normalize, where the configured limits are known.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	perPageStr := c.Query("per_page")
	if perPageStr == "" {
		perPageStr = c.Query("perPage")
	}
	perPage, _ := strconv.Atoi(perPageStr)

	return PaginationParams{
		Page:    page,
		PerPage: perPage,
		Sort:    c.Query("sort"),
		Order:   c.Query("order"),
	}
}

// Normalize clamps page to >= 1 and per-page into [1, maxPerPage],
// substituting defaultPerPage when it was not supplied.
func (p PaginationParams) Normalize(defaultPerPage, maxPerPage int) PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	p.Order = strings.ToLower(strings.TrimSpace(p.Order))
	if p.Order != "asc" && p.Order != "desc" {
		p.Order = ""
	}
	return p
}

func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func ApplyPagination(db *gorm.DB, params PaginationParams) *gorm.DB {
	return db.Offset(params.Offset()).Limit(params.PerPage)
}

func TotalPages(total int64, perPage int) int {
	if perPage < 1 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(perPage)))
}

func CreatePaginationResult(data interface{}, total int64, params PaginationParams) PaginationResult {
	return PaginationResult{
		Page:       params.Page,
		PerPage:    params.PerPage,
		Total:      total,
		TotalPages: TotalPages(total, params.PerPage),
		Data:       data,
	}
}

func SetPaginationHeaders(c *gin.Context, result PaginationResult) {
	c.Header("X-Total-Count", strconv.FormatInt(result.Total, 10))
	c.Header("X-Page", strconv.Itoa(result.Page))
	c.Header("X-Per-Page", strconv.Itoa(result.PerPage))
	c.Header("X-Total-Pages", strconv.Itoa(result.TotalPages))
}
