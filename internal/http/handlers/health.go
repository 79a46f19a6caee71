package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	h         *Handler
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(h *Handler, version string) *HealthHandler {
	return &HealthHandler{
		h:         h,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Liveness returns simple alive status (for k8s liveness probe)
func (hh *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness returns detailed health status (for k8s readiness probe)
func (hh *HealthHandler) Readiness(c *gin.Context) {
	checks := make(map[string]string)
	allHealthy := true

	// the round can run without the model, but /validate cannot
	if hh.h.Model == nil {
		checks["scoring_model"] = "unhealthy: not loaded"
		allHealthy = false
	} else {
		checks["scoring_model"] = "healthy"
	}

	checks["site_catalog"] = strconv.Itoa(len(hh.h.Sites.Sites())) + " sites"
	checks["static_mapping"] = strconv.Itoa(len(hh.h.Sites.Mapping())) + " codes"
	checks["live_subscribers"] = strconv.Itoa(hh.h.Hub.Count())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	checks["memory_alloc_mb"] = formatMB(m.Alloc)

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Version:   hh.version,
		Uptime:    time.Since(hh.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// Health is a combined endpoint for basic health checks
func (hh *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": hh.version,
	})
}

func formatMB(bytes uint64) string {
	mb := float64(bytes) / 1024 / 1024
	return fmt.Sprintf("%.2f", mb)
}
