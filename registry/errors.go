package registry

import "errors"

var (
	// ErrNotFound is returned when a job id is not present in the registry
	ErrNotFound = errors.New("job not found")

	// ErrInvalidState is returned when an operation is not valid for the job's current status
	ErrInvalidState = errors.New("operation not valid for current job status")

	// ErrOutOfRange is returned for a chunk index outside [0, totalChunks)
	ErrOutOfRange = errors.New("chunk index out of range")

	// ErrUnsupportedFormat is returned when a filename extension is not in the allow-list
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrChunkSize is returned when a chunk payload does not match the declared geometry
	ErrChunkSize = errors.New("chunk payload size does not match upload geometry")
)
