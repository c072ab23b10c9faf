package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ComingSoon is the placeholder for the code-analysis engine endpoints.
// The routes are metered so usage accrues, but the engine itself is not
// part of this service.
func ComingSoon(feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "coming_soon",
			"feature": feature,
		})
	}
}
