package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	monitoring "github.com/phillip/chapter-directory-go/monitoring"
)

// Metrics records request counts and latency labelled by route template,
// so /members/:id stays one series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		monitoring.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		monitoring.ResponseTimeHistogram.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
