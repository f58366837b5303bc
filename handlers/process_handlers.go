package handlers

import (
	"log"
	"net/http"

	"github.com/filipv1/pracovni-poloha2/pipeline"

	"github.com/gin-gonic/gin"
)

// ProcessHandlers contains handlers for starting the analysis pipeline
type ProcessHandlers struct {
	pipeline *pipeline.Pipeline
}

// NewProcessHandlers creates a new ProcessHandlers instance
func NewProcessHandlers(p *pipeline.Pipeline) *ProcessHandlers {
	return &ProcessHandlers{pipeline: p}
}

// StartProcess launches the two-stage analysis for an uploaded job and
// returns immediately; progress is observable via poll or stream
func (h *ProcessHandlers) StartProcess(c *gin.Context) {
	jobID := c.Param("jobID")

	if err := h.pipeline.Start(jobID); err != nil {
		respondRegistryError(c, err)
		return
	}

	log.Printf("User %s started processing for job %s", c.GetString("username"), jobID)

	c.JSON(http.StatusOK, gin.H{
		"status":  "processing",
		"message": "Processing started for job " + jobID,
	})
}
