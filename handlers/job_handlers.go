package handlers

import (
	"log"
	"net/http"

	"github.com/filipv1/pracovni-poloha2/registry"
	"github.com/filipv1/pracovni-poloha2/storage"

	"github.com/gin-gonic/gin"
)

// JobHandlers contains handlers for job status and cleanup operations
type JobHandlers struct {
	registry *registry.Registry
	store    *storage.ChunkStore
}

// NewJobHandlers creates a new JobHandlers instance
func NewJobHandlers(reg *registry.Registry, store *storage.ChunkStore) *JobHandlers {
	return &JobHandlers{
		registry: reg,
		store:    store,
	}
}

// GetJob is the polling endpoint: a non-blocking snapshot of the job record
func (h *JobHandlers) GetJob(c *gin.Context) {
	jobID := c.Param("jobID")

	job, err := h.registry.Get(jobID)
	if err != nil {
		respondRegistryError(c, err)
		return
	}

	response := gin.H{
		"status":   job.Status,
		"progress": job.Progress,
		"message":  job.Message,
	}

	if job.Status == registry.StatusCompleted && job.Outputs != nil {
		response["outputs"] = job.Outputs
	}

	c.JSON(http.StatusOK, response)
}

// DeleteJob removes the job from the registry and deletes its staging file
func (h *JobHandlers) DeleteJob(c *gin.Context) {
	jobID := c.Param("jobID")

	job, err := h.registry.Remove(jobID)
	if err != nil {
		respondRegistryError(c, err)
		return
	}

	if err := h.store.Remove(job.StoredPath); err != nil {
		log.Printf("Failed to delete staging file %s for job %s: %v", job.StoredPath, jobID, err)
	}

	log.Printf("User %s cleaned up job %s (%s)", c.GetString("username"), jobID, job.OriginalName)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Job " + jobID + " removed",
	})
}
