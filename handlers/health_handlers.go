package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandlers contains handlers for service health checks
type HealthHandlers struct{}

// NewHealthHandlers creates a new HealthHandlers instance
func NewHealthHandlers() *HealthHandlers {
	return &HealthHandlers{}
}

// HealthCheck reports service liveness for deployment platforms
func (h *HealthHandlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "ergonomic-analysis",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
