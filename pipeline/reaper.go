package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/filipv1/pracovni-poloha2/registry"
	"github.com/filipv1/pracovni-poloha2/storage"
)

// Reaper evicts abandoned upload sessions. Only jobs still in
// uploading state past the retention window are candidates; uploaded,
// processing and terminal jobs are never touched.
type Reaper struct {
	registry  *registry.Registry
	store     *storage.ChunkStore
	retention time.Duration
	interval  time.Duration
}

// NewReaper creates a reaper with the given retention window and sweep interval
func NewReaper(reg *registry.Registry, store *storage.ChunkStore, retention, interval time.Duration) *Reaper {
	return &Reaper{
		registry:  reg,
		store:     store,
		retention: retention,
		interval:  interval,
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled
func (r *Reaper) Run(ctx context.Context) {
	r.Sweep()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep removes stale uploading jobs and their staging files, returning
// the number of jobs reaped. A failed file deletion is logged and the
// job is kept for the next sweep; it never aborts the remaining candidates.
func (r *Reaper) Sweep() int {
	cutoff := time.Now().Add(-r.retention)
	stale := r.registry.StaleUploads(cutoff)

	reaped := 0
	for _, job := range stale {
		if err := r.store.Remove(job.StoredPath); err != nil {
			log.Printf("Reaper: failed to delete staging file %s for job %s: %v", job.StoredPath, job.ID, err)
			continue
		}
		if _, err := r.registry.Remove(job.ID); err != nil {
			continue
		}
		log.Printf("Reaper: removed abandoned upload %s (%s, created %s)",
			job.ID, job.OriginalName, job.CreatedAt.Format(time.RFC3339))
		reaped++
	}

	if reaped > 0 {
		log.Printf("Reaper: swept %d abandoned uploads", reaped)
	}
	return reaped
}
