package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"payrecon/pkg/logger"
)

// Logger logs one structured line per request: method, path, status,
// latency, client ip.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.GetLogger().WithFields(map[string]interface{}{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"query":      c.Request.URL.RawQuery,
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
			"latencyMs":  time.Since(start).Milliseconds(),
		}).Info("request processed")
	}
}
