package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribekit/observability"
)

// Readiness is 503 while any checker is down and lists those components.
// Degraded components still take traffic.
func Readiness(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.CheckAll(c.Request.Context(), serviceName, "", checkers...)
		if sh.Status != observability.HealthStatusDown {
			c.JSON(http.StatusOK, gin.H{"status": "ready", "service": serviceName})
			return
		}

		var down []string
		for _, h := range sh.Components {
			if h.Status == observability.HealthStatusDown {
				down = append(down, h.Name)
			}
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"service": serviceName,
			"down":    down,
		})
	}
}
