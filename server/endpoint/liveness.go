package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Liveness answers as long as the process can serve HTTP. External tools
// and the engine are left to /ready.
func Liveness(serviceName string) gin.HandlerFunc {
	started := time.Now()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "alive",
			"service":        serviceName,
			"uptime_seconds": int64(time.Since(started).Seconds()),
		})
	}
}
