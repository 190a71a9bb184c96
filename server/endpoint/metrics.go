package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// JobStats reports how full the job admission gate is.
type JobStats interface {
	InUse() int
	Waiting() int
	Capacity() int
}

const mib = 1 << 20

// Metrics returns a JSON snapshot of the job gate and the Go runtime. jobs
// may be nil.
func Metrics(jobs JobStats) gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		body := gin.H{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"goroutines": runtime.NumGoroutine(),
			"memory": gin.H{
				"alloc_mb":     m.Alloc / mib,
				"sys_mb":       m.Sys / mib,
				"heap_objects": m.HeapObjects,
				"gc_runs":      m.NumGC,
			},
		}
		if jobs != nil {
			body["jobs"] = gin.H{
				"active":   jobs.InUse(),
				"queued":   jobs.Waiting(),
				"capacity": jobs.Capacity(),
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
