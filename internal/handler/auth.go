package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fixlab/api-core/internal/apierror"
	"github.com/fixlab/api-core/internal/catalog"
	"github.com/fixlab/api-core/internal/middleware"
	"github.com/fixlab/api-core/internal/service"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Company  string `json:"company"`
		Tier     string `json:"tier"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	principal, apiKey, err := h.service.Register(ctx, req.Email, req.Password, req.Company, catalog.TierID(req.Tier))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id": principal.ID,
		"api_key": apiKey,
		"tier":    principal.Tier,
		"message": "Save this key - it won't be shown again",
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	token, principal, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  principal,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	// Counters move on every metered call, and the auth-time principal may
	// come from the lookup cache. Report usage from the store.
	if fresh, err := h.service.GetByID(c.Request.Context(), principal.ID.String()); err == nil && fresh != nil {
		principal = fresh
	}

	tier, _ := catalog.Resolve(catalog.TierID(principal.Tier))

	c.JSON(http.StatusOK, gin.H{
		"user": principal,
		"tier": tier,
		"usage": gin.H{
			"requests": principal.RequestsUsed,
			"storage":  principal.StorageUsed,
		},
	})
}

func respondError(c *gin.Context, err error) {
	if apiErr := apierror.From(err); apiErr != nil {
		c.JSON(apiErr.Status(), gin.H{
			"error": apiErr.Message,
			"code":  apiErr.Code,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
