package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/reseller_portal/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler provides health endpoint.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// GetHealth responds with the status of every dependency. Any failing
// dependency turns the response into 503.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	deps := gin.H{}
	healthy := true
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			deps[name] = gin.H{"status": "disconnected", "error": err.Error()}
			healthy = false
			continue
		}
		deps[name] = gin.H{"status": "connected"}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	utils.Success(c, code, "Service is "+status, gin.H{
		"status":       status,
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"dependencies": deps,
	})
}
