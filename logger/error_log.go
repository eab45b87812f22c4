package logger

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var redactedHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
}

var redactedHeaderWords = []string{"token", "key", "secret"}

// LogHTTPError logs a request failure with the request context attached.
// Responses of 500 and above are logged at error level, the rest as warnings.
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status_code", statusCode),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("client_ip", c.ClientIP()),
		zap.Any("headers", filterSensitiveHeaders(c.Request.Header)),
	}
	if requestID := c.GetString("request_id"); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if username := c.GetString("username"); username != "" {
		fields = append(fields, zap.String("username", username))
	}

	log := GetLogger().Desugar()
	if statusCode < http.StatusInternalServerError {
		log.Warn(message, fields...)
		return
	}
	if os.Getenv("SERVER_ENVIRONMENT") != "production" {
		fields = append(fields, zap.StackSkip("stack_trace", 1))
	}
	log.Error(message, fields...)
}

// filterSensitiveHeaders keeps the first value of each header and redacts
// credentials. Admin fetches carry basic auth; the web UI sends a session cookie.
func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitiveHeader(name) {
			filtered[name] = "[REDACTED]"
			continue
		}
		if len(values) > 0 {
			filtered[name] = values[0]
		}
	}
	return filtered
}

func isSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	if redactedHeaders[lower] {
		return true
	}
	for _, w := range redactedHeaderWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
