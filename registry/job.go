package registry

import "time"

// Status represents the lifecycle state of a job
type Status string

const (
	StatusUploading  Status = "uploading"
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether no further transitions can occur
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Outputs holds the artifact paths produced by a completed job
type Outputs struct {
	Video  string `json:"video"`
	Report string `json:"report"`
}

// Job is a point-in-time snapshot of a job record. Registry methods
// always return copies, never references into the live record.
type Job struct {
	ID             string    `json:"job_id"`
	OriginalName   string    `json:"original_name"`
	StoredPath     string    `json:"-"`
	SizeBytes      int64     `json:"size_bytes"`
	ChunkSizeBytes int64     `json:"chunk_size_bytes"`
	TotalChunks    int       `json:"total_chunks"`
	ReceivedChunks int       `json:"received_chunks"`
	Status         Status    `json:"status"`
	Progress       int       `json:"progress"`
	Message        string    `json:"message"`
	Owner          string    `json:"owner"`
	CreatedAt      time.Time `json:"created_at"`
	Outputs        *Outputs  `json:"outputs,omitempty"`
}

// ChunkOffset returns the byte offset of a chunk in the staging file
func (j *Job) ChunkOffset(index int) int64 {
	return int64(index) * j.ChunkSizeBytes
}

// ChunkLen returns the expected payload length for a chunk index.
// The final chunk covers whatever remains of the declared file size.
func (j *Job) ChunkLen(index int) int64 {
	if index == j.TotalChunks-1 {
		return j.SizeBytes - int64(j.TotalChunks-1)*j.ChunkSizeBytes
	}
	return j.ChunkSizeBytes
}
