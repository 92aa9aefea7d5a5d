package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/technofest-ar/platform-api/internal/database"
)

// HealthHandler reports service and database health
type HealthHandler struct {
	db *database.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health reports overall service health including database reachability
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	dbStatus := "ok"

	if err := h.db.HealthCheck(); err != nil {
		status = "degraded"
		dbStatus = err.Error()
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	stats := h.db.GetStats()
	c.JSON(code, gin.H{
		"status":   status,
		"database": dbStatus,
		"pool": gin.H{
			"open":   stats.OpenConnections,
			"in_use": stats.InUse,
			"idle":   stats.Idle,
		},
		"timestamp": time.Now(),
	})
}
