package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/filipv1/pracovni-poloha2/registry"

	"github.com/gin-gonic/gin"
)

// DownloadHandlers contains handlers for serving result artifacts
type DownloadHandlers struct {
	registry *registry.Registry
}

// NewDownloadHandlers creates a new DownloadHandlers instance
func NewDownloadHandlers(reg *registry.Registry) *DownloadHandlers {
	return &DownloadHandlers{registry: reg}
}

// DownloadArtifact streams a completed job's artifact as an attachment.
// artifactKind is "video" or "report".
func (h *DownloadHandlers) DownloadArtifact(c *gin.Context) {
	jobID := c.Param("jobID")
	kind := c.Param("artifactKind")

	job, err := h.registry.Get(jobID)
	if err != nil {
		respondRegistryError(c, err)
		return
	}

	if job.Status != registry.StatusCompleted || job.Outputs == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Processing not completed"})
		return
	}

	stem := strings.TrimSuffix(job.OriginalName, filepath.Ext(job.OriginalName))

	var path, filename string
	switch kind {
	case "video":
		path = job.Outputs.Video
		filename = fmt.Sprintf("%s_analyzed.mp4", stem)
	case "report":
		path = job.Outputs.Report
		filename = fmt.Sprintf("%s_report.xlsx", stem)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid artifact kind: " + kind})
		return
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artifact file not found on server"})
		return
	}

	log.Printf("User %s downloaded %s for job %s (%s)", c.GetString("username"), kind, jobID, filename)

	c.FileAttachment(path, filename)
}
