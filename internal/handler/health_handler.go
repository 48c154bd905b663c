package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	stagingDir string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(stagingDir string) *HealthHandler {
	if stagingDir == "" {
		stagingDir = os.TempDir()
	}
	return &HealthHandler{stagingDir: stagingDir}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
// The service is ready when the staging directory is writable.
func (h *HealthHandler) Readiness(c *gin.Context) {
	probe := filepath.Join(h.stagingDir, ".readyz-"+uuid.New().String())
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "staging directory not writable"})
		return
	}
	_ = os.Remove(probe)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
