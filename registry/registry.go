package registry

import (
	"log"
	"sync"
	"time"
)

// record is a live job entry. Its mutex serializes all field access for
// that job, including the chunk bitset and the uploaded-transition check.
// The registry mutex only guards the map itself, so bookkeeping for one
// job never blocks unrelated jobs.
type record struct {
	mu     sync.Mutex
	job    Job
	chunks *chunkSet
}

// Registry is the in-memory job table shared by every component.
// It is the single source of truth for job status and progress.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*record
}

// NewRegistry creates an empty job registry
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]*record),
	}
}

// ChunkResult reports the outcome of committing one chunk
type ChunkResult struct {
	AlreadyPresent bool
	ReceivedChunks int
	TotalChunks    int
	Progress       int
	Complete       bool
}

// Create registers a new job in uploading state and returns its snapshot
func (r *Registry) Create(id, originalName, storedPath, owner string, sizeBytes, chunkSize int64, totalChunks int) Job {
	rec := &record{
		job: Job{
			ID:             id,
			OriginalName:   originalName,
			StoredPath:     storedPath,
			SizeBytes:      sizeBytes,
			ChunkSizeBytes: chunkSize,
			TotalChunks:    totalChunks,
			Status:         StatusUploading,
			Message:        "Waiting for chunks...",
			Owner:          owner,
			CreatedAt:      time.Now(),
		},
		chunks: newChunkSet(totalChunks),
	}

	r.mu.Lock()
	r.jobs[id] = rec
	r.mu.Unlock()

	return rec.job
}

// Get returns a snapshot of the job, or ErrNotFound
func (r *Registry) Get(id string) (Job, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return Job{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.snapshot(), nil
}

// PeekChunk validates a chunk delivery before any bytes are written.
// It reports whether the chunk is already present so retries can be
// answered without re-writing the staging file.
func (r *Registry) PeekChunk(id string, index int, payloadLen int64) (alreadyPresent bool, err error) {
	rec, err := r.lookup(id)
	if err != nil {
		return false, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.job.Status != StatusUploading {
		return false, ErrInvalidState
	}
	if index < 0 || index >= rec.job.TotalChunks {
		return false, ErrOutOfRange
	}
	if payloadLen != rec.job.ChunkLen(index) {
		return false, ErrChunkSize
	}

	return rec.chunks.Has(index), nil
}

// CommitChunk records a successfully written chunk. The bitset mutation
// and the completeness check form a single atomic unit per job, so
// concurrent chunk writers cannot double-count progress or trigger the
// uploaded transition twice.
func (r *Registry) CommitChunk(id string, index int) (ChunkResult, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return ChunkResult{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.job.Status != StatusUploading {
		return ChunkResult{}, ErrInvalidState
	}
	if index < 0 || index >= rec.job.TotalChunks {
		return ChunkResult{}, ErrOutOfRange
	}

	result := ChunkResult{TotalChunks: rec.job.TotalChunks}

	if !rec.chunks.Set(index) {
		result.AlreadyPresent = true
		result.ReceivedChunks = rec.chunks.Count()
		result.Progress = rec.job.Progress
		return result, nil
	}

	rec.job.ReceivedChunks = rec.chunks.Count()
	rec.job.Progress = 100 * rec.chunks.Count() / rec.job.TotalChunks
	result.ReceivedChunks = rec.job.ReceivedChunks

	if rec.chunks.Full() {
		rec.job.Status = StatusUploaded
		rec.job.Progress = 100
		rec.job.Message = "Upload complete"
		result.Complete = true
		log.Printf("Job %s upload complete (%d chunks, %d bytes)", id, rec.job.TotalChunks, rec.job.SizeBytes)
	}

	result.Progress = rec.job.Progress
	return result, nil
}

// MarkProcessing transitions a job from uploaded to processing.
// Any other starting status is rejected, which guarantees at most one
// pipeline run per job id.
func (r *Registry) MarkProcessing(id, message string) (Job, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return Job{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.job.Status != StatusUploaded {
		return Job{}, ErrInvalidState
	}

	rec.job.Status = StatusProcessing
	rec.job.Progress = 0
	rec.job.Message = message
	return rec.snapshot(), nil
}

// SetProgress updates the pipeline stage marker for a processing job
func (r *Registry) SetProgress(id string, progress int, message string) {
	rec, err := r.lookup(id)
	if err != nil {
		return
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.job.Status != StatusProcessing {
		return
	}
	rec.job.Progress = progress
	rec.job.Message = message
}

// Complete marks a processing job as completed and publishes its
// artifact paths. Outputs are set exactly once, atomically with the
// terminal transition.
func (r *Registry) Complete(id, message string, outputs Outputs) {
	rec, err := r.lookup(id)
	if err != nil {
		return
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.job.Status != StatusProcessing {
		return
	}
	rec.job.Status = StatusCompleted
	rec.job.Progress = 100
	rec.job.Message = message
	rec.job.Outputs = &outputs
}

// Fail marks a job as failed with a diagnostic message. Reachable from
// any non-terminal status.
func (r *Registry) Fail(id, message string) {
	rec, err := r.lookup(id)
	if err != nil {
		return
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.job.Status.Terminal() {
		return
	}
	rec.job.Status = StatusError
	rec.job.Message = message
}

// Remove deletes a job from the registry and returns its final snapshot
func (r *Registry) Remove(id string) (Job, error) {
	r.mu.Lock()
	rec, ok := r.jobs[id]
	if ok {
		delete(r.jobs, id)
	}
	r.mu.Unlock()

	if !ok {
		return Job{}, ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.snapshot(), nil
}

// StaleUploads returns snapshots of uploading jobs created before the cutoff
func (r *Registry) StaleUploads(cutoff time.Time) []Job {
	r.mu.RLock()
	records := make([]*record, 0, len(r.jobs))
	for _, rec := range r.jobs {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	var stale []Job
	for _, rec := range records {
		rec.mu.Lock()
		if rec.job.Status == StatusUploading && rec.job.CreatedAt.Before(cutoff) {
			stale = append(stale, rec.snapshot())
		}
		rec.mu.Unlock()
	}
	return stale
}

func (r *Registry) lookup(id string) (*record, error) {
	r.mu.RLock()
	rec, ok := r.jobs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// snapshot copies the job fields; caller must hold rec.mu
func (rec *record) snapshot() Job {
	snap := rec.job
	if rec.job.Outputs != nil {
		outputs := *rec.job.Outputs
		snap.Outputs = &outputs
	}
	return snap
}
