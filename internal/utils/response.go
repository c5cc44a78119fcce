// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/prop-catalog/internal/apperrors"
	"github.com/javajoker/prop-catalog/internal/i18n"
	"github.com/javajoker/prop-catalog/internal/models"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, string(apperrors.CodeValidation), message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, string(apperrors.CodeUnauthorized), message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyAdminAccessDenied)
	}
	ErrorResponse(c, http.StatusForbidden, string(apperrors.CodeForbidden), message, nil)
}

func InternalErrorResponse(c *gin.Context) {
	lang := GetLangFromContext(c)
	ErrorResponse(c, http.StatusInternalServerError, string(apperrors.CodeInternal), i18n.T(lang, i18n.KeyInternalError), nil)
}

// HandleServiceError writes the response for an error returned by a service.
// Coded errors keep their message; anything else is logged with the request
// context and answered with a generic message.
func HandleServiceError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if apperrors.As(err, &appErr) && appErr.Code != apperrors.CodeInternal {
		ErrorResponse(c, appErr.HTTPStatus(), string(appErr.Code), appErr.Message, appErr.Details)
		return
	}

	logStoreFailure(c, err)
	InternalErrorResponse(c)
}

// ListErrorResponse answers a failed listing or search: validation problems
// surface as usual, store failures degrade to an empty list with the error set.
func ListErrorResponse(c *gin.Context, err error) {
	if code := apperrors.CodeOf(err); code != apperrors.CodeInternal {
		HandleServiceError(c, err)
		return
	}

	logStoreFailure(c, err)
	lang := GetLangFromContext(c)
	c.JSON(http.StatusInternalServerError, APIResponse{
		Success: false,
		Data:    []interface{}{},
		Error: &APIError{
			Code:    string(apperrors.CodeInternal),
			Message: i18n.T(lang, i18n.KeyInternalError),
		},
	})
}

func logStoreFailure(c *gin.Context, err error) {
	fields := logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}
	if requestID, ok := c.Get("request_id"); ok {
		fields["request_id"] = requestID
	}
	if actor, ok := GetActorFromContext(c); ok {
		fields["user_id"] = actor.UserID
	}
	logrus.WithError(err).WithFields(fields).Error("Request failed")
}

func PaginatedResponse(c *gin.Context, result PaginationResult, extraMeta gin.H) {
	SetPaginationHeaders(c, result)

	meta := gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"per_page":    result.PerPage,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	}
	for k, v := range extraMeta {
		meta[k] = v
	}
	SuccessResponseWithMeta(c, result.Data, meta)
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return "en"
}

// GetActorFromContext returns the caller set by the auth middleware.
func GetActorFromContext(c *gin.Context) (models.Actor, bool) {
	if value, exists := c.Get("actor"); exists {
		if actor, ok := value.(models.Actor); ok {
			return actor, true
		}
	}
	return models.Actor{}, false
}
