package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribekit/observability"
	"github.com/kbukum/scribekit/version"
)

// Health returns a handler that aggregates the given checkers. A degraded
// component still answers 200; a down component answers 503.
func Health(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.CheckAll(c.Request.Context(), serviceName, version.Version, checkers...)

		httpStatus := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":     sh.Status,
			"service":    sh.Service,
			"version":    sh.Version,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": sh.Components,
		})
	}
}
