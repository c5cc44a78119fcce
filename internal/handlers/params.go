// internal/handlers/params.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/prop-catalog/internal/i18n"
	"github.com/javajoker/prop-catalog/internal/models"
	"github.com/javajoker/prop-catalog/internal/utils"
)

// pathID parses the :id parameter and answers 400 when it is not a positive
// integer.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "id"), nil)
		return 0, false
	}
	return uint(id), true
}

// optionalUint returns nil for a missing or malformed query value.
func optionalUint(c *gin.Context, key string) *uint {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Query(key)), 10, 64)
	if err != nil || value == 0 {
		return nil
	}
	id := uint(value)
	return &id
}

// idList parses a comma-joined list of positive ids.
func idList(raw string) ([]uint, bool) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, false
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}

func slugList(raw string) []string {
	var slugs []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			slugs = append(slugs, part)
		}
	}
	return slugs
}

func queryBool(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(c.Query(key))
	return err == nil && value
}

// optionalActor returns the caller when OptionalAuth found a valid token.
func optionalActor(c *gin.Context) *models.Actor {
	if actor, ok := utils.GetActorFromContext(c); ok {
		return &actor
	}
	return nil
}

// requireActor answers 401 when no caller is set.
func requireActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := utils.GetActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return models.Actor{}, false
	}
	return actor, true
}

// bindJSON answers 400 when the body is not valid JSON for obj.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}
