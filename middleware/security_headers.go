package middleware

import (
	"github.com/NomadCrew/feedback-collector/config"
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware sets the standard hardening headers. Framing is
// limited to the same origin because the admin dashboard embeds its charts.
func SecurityHeadersMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// HSTS only behind production TLS.
		if cfg.Environment == config.EnvProduction {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
