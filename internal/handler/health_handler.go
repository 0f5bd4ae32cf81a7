package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgredis "github.com/yogaflow/studio-booking/pkg/redis"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	redis   *pkgredis.Client
	version string
}

// NewHealthHandler creates a new health handler. The Redis client may be
// nil when idempotency caching is disabled.
func NewHealthHandler(redis *pkgredis.Client, version string) *HealthHandler {
	return &HealthHandler{redis: redis, version: version}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

// Ready handles GET /ready. Reports degraded dependencies without failing
// the probe for optional ones.
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	status := http.StatusOK

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()); err != nil {
			checks["redis"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["redis"] = "ok"
		}
	}

	body := gin.H{"status": "ready", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "not ready"
	}
	c.JSON(status, body)
}
