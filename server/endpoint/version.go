package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribekit/version"
)

// Version reports the build and how long the handler has been up.
func Version(serviceName string) gin.HandlerFunc {
	info := version.Get(serviceName)
	started := time.Now()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, struct {
			version.Info
			Uptime string `json:"uptime"`
		}{info, time.Since(started).Round(time.Second).String()})
	}
}
