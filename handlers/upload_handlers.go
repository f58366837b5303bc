package handlers

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/filipv1/pracovni-poloha2/config"
	"github.com/filipv1/pracovni-poloha2/registry"
	"github.com/filipv1/pracovni-poloha2/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// allowedExtensions is the media container allow-list for uploads
var allowedExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true,
	".m4v": true, ".wmv": true, ".flv": true, ".webm": true,
}

// UploadHandlers contains handlers for the resumable chunked upload flow
type UploadHandlers struct {
	registry *registry.Registry
	store    *storage.ChunkStore
	cfg      *config.Config
}

// NewUploadHandlers creates a new UploadHandlers instance
func NewUploadHandlers(reg *registry.Registry, store *storage.ChunkStore, cfg *config.Config) *UploadHandlers {
	return &UploadHandlers{
		registry: reg,
		store:    store,
		cfg:      cfg,
	}
}

// InitUploadRequest is the upload initiation payload
type InitUploadRequest struct {
	Filename  string `json:"filename" binding:"required"`
	Filesize  int64  `json:"filesize" binding:"required"`
	ChunkSize int64  `json:"chunk_size"`
}

// InitUpload validates the upload request, allocates the sparse staging
// file and registers a new job in uploading state. Nothing is allocated
// for a rejected request.
func (h *UploadHandlers) InitUpload(c *gin.Context) {
	var req InitUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid filename/filesize"})
		return
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file format: " + ext})
		return
	}

	if req.Filesize <= 0 || req.Filesize > h.cfg.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file size"})
		return
	}

	chunkSize := req.ChunkSize
	if chunkSize <= 0 {
		chunkSize = h.cfg.DefaultChunkSize
	}

	totalChunks := int((req.Filesize + chunkSize - 1) / chunkSize)

	jobID := uuid.New().String()
	stagingPath := h.store.StagingPath(jobID, req.Filename)

	if err := h.store.Allocate(stagingPath, req.Filesize); err != nil {
		log.Printf("Upload init failed for %s: %v", req.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate staging file"})
		return
	}

	owner := c.GetString("username")
	h.registry.Create(jobID, req.Filename, stagingPath, owner, req.Filesize, chunkSize, totalChunks)

	log.Printf("User %s initiated upload: job=%s file=%s size=%d chunks=%d",
		owner, jobID, req.Filename, req.Filesize, totalChunks)

	c.JSON(http.StatusOK, gin.H{
		"job_id":       jobID,
		"chunk_size":   chunkSize,
		"total_chunks": totalChunks,
	})
}

// UploadChunk accepts one raw chunk body addressed by job id and chunk
// index. Re-delivery of an already-received index is answered as
// already_uploaded without touching the staging file.
func (h *UploadHandlers) UploadChunk(c *gin.Context) {
	jobID := c.Param("jobID")

	chunkIndex, err := strconv.Atoi(c.Param("chunkIndex"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chunk index"})
		return
	}

	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read chunk body"})
		return
	}

	already, err := h.registry.PeekChunk(jobID, chunkIndex, int64(len(data)))
	if err != nil {
		respondRegistryError(c, err)
		return
	}

	job, err := h.registry.Get(jobID)
	if err != nil {
		respondRegistryError(c, err)
		return
	}

	if !already {
		if err := h.store.WriteChunk(job.StoredPath, job.ChunkOffset(chunkIndex), data); err != nil {
			log.Printf("Chunk write failed: job=%s index=%d: %v", jobID, chunkIndex, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write chunk, please retry"})
			return
		}
	}

	result, err := h.registry.CommitChunk(jobID, chunkIndex)
	if err != nil {
		respondRegistryError(c, err)
		return
	}

	status := "success"
	if result.AlreadyPresent {
		status = "already_uploaded"
	}

	if result.Complete {
		log.Printf("Upload complete: job=%s file=%s", jobID, job.OriginalName)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          status,
		"progress":        result.Progress,
		"uploaded_chunks": result.ReceivedChunks,
		"total_chunks":    result.TotalChunks,
		"upload_complete": result.Complete,
	})
}

// respondRegistryError maps registry sentinels to HTTP status codes
func respondRegistryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
	case errors.Is(err, registry.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, registry.ErrOutOfRange), errors.Is(err, registry.ErrChunkSize),
		errors.Is(err, registry.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
