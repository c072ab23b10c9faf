package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fixlab/api-core/internal/alert"
	"github.com/fixlab/api-core/internal/store"
)

// AdminHandler serves the admin-only inspection routes.
type AdminHandler struct {
	store  store.PrincipalStore
	engine *alert.Engine
}

func NewAdminHandler(principals store.PrincipalStore, engine *alert.Engine) *AdminHandler {
	return &AdminHandler{store: principals, engine: engine}
}

func (h *AdminHandler) Users(c *gin.Context) {
	principals, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": principals,
		"count": len(principals),
	})
}

// Alerts returns recent alert events, optionally filtered by severity.
func (h *AdminHandler) Alerts(c *gin.Context) {
	if severity := c.Query("severity"); severity != "" {
		events := h.engine.BySeverity(alert.Severity(severity))
		c.JSON(http.StatusOK, gin.H{
			"alerts": events,
			"count":  len(events),
		})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events := h.engine.Recent(limit)
	c.JSON(http.StatusOK, gin.H{
		"alerts": events,
		"count":  len(events),
	})
}
