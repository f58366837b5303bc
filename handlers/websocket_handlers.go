package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/filipv1/pracovni-poloha2/registry"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ProgressEvent is one status sample pushed to a stream subscriber
type ProgressEvent struct {
	Status   registry.Status   `json:"status"`
	Progress int               `json:"progress"`
	Message  string            `json:"message"`
	Outputs  *registry.Outputs `json:"outputs,omitempty"`
}

// progressUpgrader configures the WebSocket upgrader for progress streams
var progressUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandlers contains handlers for streaming job progress
type WebSocketHandlers struct {
	registry   *registry.Registry
	interval   time.Duration
	maxSamples int
}

// NewWebSocketHandlers creates a new WebSocketHandlers instance
func NewWebSocketHandlers(reg *registry.Registry, interval time.Duration, maxSamples int) *WebSocketHandlers {
	return &WebSocketHandlers{
		registry:   reg,
		interval:   interval,
		maxSamples: maxSamples,
	}
}

// JobProgressWebSocketHandler streams job status snapshots over a
// WebSocket. A new event is sent whenever progress or status changes,
// with a guaranteed final event on a terminal state. The stream ends
// after maxSamples intervals with a timeout marker, and the sampler
// goroutine stops within one interval of the client disconnecting.
func (h *WebSocketHandlers) JobProgressWebSocketHandler(c *gin.Context) {
	jobID := c.Param("jobID")

	if _, err := h.registry.Get(jobID); err != nil {
		respondRegistryError(c, err)
		return
	}

	ws, err := progressUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Error upgrading to progress websocket for job %s: %v", jobID, err)
		return
	}
	defer ws.Close()

	log.Printf("Progress stream opened for job %s", jobID)

	// Read pump: nothing is expected from the client, but a read error
	// is the disconnect signal that tears the sampler down.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	lastProgress := -1
	lastStatus := registry.Status("")

	for samples := 0; samples < h.maxSamples; samples++ {
		job, err := h.registry.Get(jobID)
		if err != nil {
			ws.WriteJSON(gin.H{"status": "error", "message": "Job not found"})
			return
		}

		if job.Progress != lastProgress || job.Status != lastStatus {
			event := ProgressEvent{
				Status:   job.Status,
				Progress: job.Progress,
				Message:  job.Message,
			}
			if job.Status == registry.StatusCompleted {
				event.Outputs = job.Outputs
			}
			if err := ws.WriteJSON(event); err != nil {
				log.Printf("Progress stream write failed for job %s: %v", jobID, err)
				return
			}
			lastProgress = job.Progress
			lastStatus = job.Status
		}

		if job.Status.Terminal() {
			log.Printf("Progress stream for job %s ended on %s", jobID, job.Status)
			return
		}

		select {
		case <-ctx.Done():
			log.Printf("Progress stream for job %s closed by client", jobID)
			return
		case <-ticker.C:
		}
	}

	ws.WriteJSON(gin.H{"status": "timeout", "message": "Monitoring timed out"})
	log.Printf("Progress stream for job %s timed out after %d samples", jobID, h.maxSamples)
}
