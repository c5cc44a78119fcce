package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIDList(t *testing.T) {
	ids, ok := idList("3, 1,,2")
	assert.True(t, ok)
	assert.Equal(t, []uint{3, 1, 2}, ids)

	ids, ok = idList("")
	assert.True(t, ok)
	assert.Empty(t, ids)

	for _, raw := range []string{"1,x", "0", "-4"} {
		_, ok = idList(raw)
		assert.False(t, ok, raw)
	}
}

func TestSlugList(t *testing.T) {
	assert.Equal(t, []string{"wood", "vintage"}, slugList(" Wood ,,vintage"))
	assert.Nil(t, slugList(""))
}

func TestOptionalUint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?category_id=7&exclude_id=abc&zero=0", nil)

	if id := optionalUint(c, "category_id"); assert.NotNil(t, id) {
		assert.Equal(t, uint(7), *id)
	}
	assert.Nil(t, optionalUint(c, "exclude_id"))
	assert.Nil(t, optionalUint(c, "zero"))
	assert.Nil(t, optionalUint(c, "missing"))
}
