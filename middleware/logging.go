package middleware

import (
	"time"

	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := logger.GetLogger()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(RequestIDKey),
		}
		if c.Writer.Status() >= 500 {
			log.Errorw("Request completed", fields...)
			return
		}
		log.Debugw("Request completed", fields...)
	}
}
