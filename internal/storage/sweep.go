package storage

import (
	"context"
	"os"
	"time"
)

// Sweep removes every job older than the retention window and returns how
// many were cleaned. Missing directories are tolerated; records are removed
// regardless so the sweep converges.
func (s *Store) Sweep(retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)

	expired, err := s.db.ExpiredJobs(cutoff)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, record := range expired {
		jobDir := s.jobDir(record.ID)
		if err := os.RemoveAll(jobDir); err != nil {
			s.logger.Warn("Failed to remove expired job directory", "job_id", record.ID, "error", err)
			continue
		}
		if err := s.db.DeleteJob(record.ID); err != nil {
			s.logger.Warn("Failed to delete expired job record", "job_id", record.ID, "error", err)
			continue
		}
		s.logger.Info("Cleaned up old job", "job_id", record.ID)
		cleaned++
	}
	return cleaned, nil
}

// RunSweeper sweeps on the given interval until the context is cancelled.
func (s *Store) RunSweeper(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(retention); err != nil {
				s.logger.Error("Sweep failed", "error", err)
			}
		}
	}
}
