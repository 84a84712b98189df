package middleware

import (
	"crypto/subtle"
	"net/http"

	"ooru-foods/models"

	"github.com/gin-gonic/gin"
)

// APIKeyMiddleware requires the anonymous key in X-API-KEY or apikey.
func APIKeyMiddleware(anonKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-KEY")
		if key == "" {
			key = c.GetHeader("apikey")
		}

		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(anonKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}
