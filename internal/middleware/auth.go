package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fixlab/api-core/internal/apierror"
	"github.com/fixlab/api-core/internal/metrics"
	"github.com/fixlab/api-core/internal/models"
	"github.com/fixlab/api-core/internal/service"
)

const principalKey = "principal"

// Authenticate resolves the request to a principal via the API key header
// or a bearer session token, in that order. Failure rejects the request
// before any handler runs; success only attaches the principal to the
// context and never mutates principal state.
func Authenticate(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if key := strings.TrimSpace(c.GetHeader("X-API-Key")); key != "" {
			principal, err := authService.ResolveAPIKey(ctx, key)
			if err == nil && principal != nil {
				c.Set(principalKey, principal)
				c.Next()
				return
			}
			metrics.AuthFailuresTotal.WithLabelValues("api_key").Inc()
			// Unmatched keys fall through to the bearer scheme.
		}

		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, apierror.Unauthenticated("missing or malformed credentials"))
			return
		}

		principal, err := authService.ResolveToken(ctx, parts[1])
		if err != nil || principal == nil {
			metrics.AuthFailuresTotal.WithLabelValues("bearer").Inc()
			abortWithError(c, apierror.Unauthenticated("invalid or expired token"))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdmin rejects principals whose role is not admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.IsAdmin() {
			abortWithError(c, apierror.Forbidden("admin role required"))
			return
		}
		c.Next()
	}
}

// PrincipalFromContext returns the principal attached by Authenticate.
func PrincipalFromContext(c *gin.Context) (*models.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}

	principal, ok := value.(*models.Principal)
	return principal, ok
}

func abortWithError(c *gin.Context, err *apierror.Error) {
	c.JSON(err.Status(), gin.H{
		"error": err.Message,
		"code":  err.Code,
	})
	c.Abort()
}
