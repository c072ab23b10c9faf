package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fixlab/api-core/internal/catalog"
)

// Pricing returns the full tier catalog. Public route.
func Pricing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tiers": catalog.List(),
	})
}
