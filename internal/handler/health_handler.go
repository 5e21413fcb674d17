package handler

import (
	"net/http"
	"os/exec"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	pdftoppm string
}

// NewHealthHandler creates a new HealthHandler. pdftoppm is the poppler binary
// the rasterizer depends on.
func NewHealthHandler(pdftoppm string) *HealthHandler {
	return &HealthHandler{pdftoppm: pdftoppm}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if _, err := exec.LookPath(h.pdftoppm); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "pdftoppm not found on PATH"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
