package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// ChunkStore manages the staging files chunks are written into.
// Each staging file is allocated sparse at its full declared size up
// front, so chunks for disjoint byte ranges can land in any order and
// concurrently without coordinating at the I/O level.
type ChunkStore struct {
	dir string
}

// NewChunkStore creates the staging directory if needed
func NewChunkStore(dir string) (*ChunkStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &ChunkStore{dir: dir}, nil
}

// Dir returns the staging directory
func (s *ChunkStore) Dir() string {
	return s.dir
}

// StagingPath derives the staging file path for a job. The job id
// prefix keeps concurrent uploads of the same filename from colliding.
func (s *ChunkStore) StagingPath(jobID, originalName string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s", jobID, filepath.Base(originalName)))
}

// Allocate creates a sparse staging file of exactly size bytes
func (s *ChunkStore) Allocate(path string, size int64) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}
	defer f.Close()

	if err := f.Truncate(size); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to allocate staging file: %w", err)
	}

	log.Printf("Allocated staging file %s (%d bytes)", path, size)
	return nil
}

// WriteChunk writes a chunk payload at its byte offset in the staging file
func (s *ChunkStore) WriteChunk(path string, offset int64, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open staging file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteAt(data, offset); err != nil {
		return fmt.Errorf("failed to write chunk at offset %d: %w", offset, err)
	}
	return nil
}

// Remove deletes a staging file. A missing file is not an error.
func (s *ChunkStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
