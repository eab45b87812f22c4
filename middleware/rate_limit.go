package middleware

import (
	"strconv"
	"time"

	apperrors "github.com/NomadCrew/feedback-collector/errors"
	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/NomadCrew/feedback-collector/services"
	"github.com/gin-gonic/gin"
)

// RateLimiter limits requests per client IP under the given scope. A limiter
// failure lets the request through.
func RateLimiter(limiter services.RateLimiterInterface, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()

		res, err := limiter.CheckLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.GetLogger().Warnw("Rate limiter unavailable, allowing request",
				"scope", scope, "error", err, "request_id", c.GetString(RequestIDKey))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))

		if !res.Allowed {
			retry := int(res.RetryAfter.Round(time.Second).Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.RetryAfter).Unix(), 10))
			c.Header("Retry-After", strconv.Itoa(retry))

			_ = c.Error(apperrors.RateLimitExceeded("Too many requests. Please try again later.", retry))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(window).Unix(), 10))
		c.Next()
	}
}
