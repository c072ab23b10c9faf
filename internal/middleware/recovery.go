package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fixlab/api-core/internal/monitor"
)

// Recovery turns panics into a generic 500 and records the occurrence as an
// error signal. Nothing local needs rollback; request state is discarded.
func Recovery(logger *zap.Logger, m *monitor.ErrorMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.String("request_id", c.GetString("request_id")),
					zap.Any("panic", err))

				if m != nil {
					m.RecordError(fmt.Sprintf("panic: %v", err))
				}

				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal Server Error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
