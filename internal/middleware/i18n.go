// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// I18nMiddleware stores the preferred supported language under "lang".
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	if defaultLang == "" {
		defaultLang = "en"
	}

	return func(c *gin.Context) {
		c.Set("lang", preferredLanguage(c.GetHeader("Accept-Language"), defaultLang))
		c.Next()
	}
}

// preferredLanguage handles headers like "zh-TW,zh;q=0.9,en;q=0.8" by taking
// the first entry.
func preferredLanguage(header, defaultLang string) string {
	if header == "" {
		return defaultLang
	}

	first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	switch strings.ToLower(strings.ReplaceAll(first, "_", "-")) {
	case "zh-tw", "zh-hant", "zh-hk", "zh":
		return "zh_TW"
	case "en", "en-us", "en-gb":
		return "en"
	default:
		return defaultLang
	}
}
