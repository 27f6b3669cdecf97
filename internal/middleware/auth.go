package middleware

import (
	"crypto/subtle"
	"net/http"

	"marketplace-ledger/internal/config"
	"marketplace-ledger/internal/response"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware guards the admin routes with the configured API key.
// Withdrawal decisions are admin actions; authorization beyond the shared
// key (who the admin is) belongs to the surrounding platform.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			apiKey = c.Query("api_key")
		}

		configured := config.AppConfig.AdminAPIKey
		if configured == "" {
			c.JSON(http.StatusServiceUnavailable, response.Error("Admin API is not configured"))
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(configured)) != 1 {
			c.JSON(http.StatusUnauthorized, response.Error("Invalid API key"))
			c.Abort()
			return
		}

		c.Next()
	}
}
