package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"payrecon/pkg/logger"
	"payrecon/pkg/response"
)

// Recovery converts a panicking handler into a 500 response instead of
// a crashed process.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.GetLogger().WithField("panic", r).Error("recovered from panic")
				response.InternalError(c, "internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// ErrorHandler emits a response for any gin.Context error set by a
// handler that didn't already write one itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		logger.GetLogger().WithError(err.Err).Error("request error")

		if c.Writer.Status() == http.StatusOK {
			response.InternalError(c, "request failed")
		}
	}
}
