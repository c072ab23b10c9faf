package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/fixlab/api-core/internal/monitor"
)

// ErrorTrap feeds server-side failures on the request path into the error
// monitor once the response is written. The alert rules run synchronously
// here; they never surface errors back into the response.
func ErrorTrap(m *monitor.ErrorMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 500 {
			return
		}

		message := fmt.Sprintf("%s %s returned %d", c.Request.Method, c.Request.URL.Path, status)
		if len(c.Errors) > 0 {
			message = c.Errors.Last().Error()
		}

		m.RecordError(message)
	}
}
