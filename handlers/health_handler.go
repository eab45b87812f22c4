package handlers

import (
	"context"
	"net/http"

	"github.com/NomadCrew/feedback-collector/types"
	"github.com/gin-gonic/gin"
)

// HealthChecker reports the state of a server's dependencies.
type HealthChecker interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}

// HealthHandler serves the probe endpoints of both servers.
type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// LivenessCheck reports that the process is serving. It checks nothing else.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"status": types.HealthStatusUp})
}

// ReadinessCheck answers 503 while a critical dependency is down. A degraded
// optional dependency such as the rate limit Redis still counts as ready.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	h.respond(c, true)
}

// DetailedHealth always answers 200 with per-component status.
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	h.respond(c, false)
}

func (h *HealthHandler) respond(c *gin.Context, strict bool) {
	health := h.checker.CheckHealth(c.Request.Context())
	status := http.StatusOK
	if strict && health.Status == types.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(status, health)
}
