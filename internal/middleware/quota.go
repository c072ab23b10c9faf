package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fixlab/api-core/internal/apierror"
	"github.com/fixlab/api-core/internal/meter"
)

// MeterUsage admits or rejects the request against the principal's tier
// quota. Routes without an authenticated principal pass through unmetered.
func MeterUsage(m *meter.Meter) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			c.Next()
			return
		}

		decision, err := m.Allow(c.Request.Context(), principal)
		if decision != nil {
			setUsageHeaders(c, decision)
		}

		if err != nil {
			apiErr := apierror.From(err)
			if apiErr == nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "usage check failed",
				})
				c.Abort()
				return
			}

			body := gin.H{
				"error": apiErr.Message,
				"code":  apiErr.Code,
			}
			if apiErr.Code == apierror.CodeQuotaExceeded && decision != nil {
				body["tier"] = decision.Tier.ID
				body["limit"] = decision.Limit
				body["upgrade"] = "/pricing"
			}

			c.JSON(apiErr.Status(), body)
			c.Abort()
			return
		}

		c.Next()
	}
}

func setUsageHeaders(c *gin.Context, d *meter.Decision) {
	c.Header("X-Tier", string(d.Tier.ID))
	c.Header("X-Requests-Used", strconv.FormatInt(d.Used, 10))
	c.Header("X-Requests-Limit", strconv.FormatInt(d.Limit, 10))
}
