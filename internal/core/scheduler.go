package core

// scheduler.go provides the periodic backup job.
//
// The scheduler is long-running and context-aware for graceful shutdown. It
// logs failures but never stops the application because one backup failed.
// The first cycle always stores a backup, even of an empty program. Later
// cycles are skipped when the program has not changed since the last one.

import (
	"context"
	"time"
)

// DefaultBackupInterval is how often scheduled backups run.
const DefaultBackupInterval = 24 * time.Hour

// StartBackupScheduler backs up the program every interval until ctx is
// cancelled. It runs once immediately on start.
func (s *Service) StartBackupScheduler(ctx context.Context, interval time.Duration) {
	if s.backups == nil {
		s.logger.Warn("backup scheduler not started: backup storage is not configured")
		return
	}
	if interval <= 0 {
		interval = DefaultBackupInterval
	}

	s.logger.Info("backup scheduler started", "interval", interval.String(), "prefix", s.backupPrefix)
	ctx = WithCaller(ctx, Caller{Channel: ChannelScheduler})

	s.runBackupJob(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("backup scheduler stopped")
			return
		case <-ticker.C:
			s.runBackupJob(ctx)
		}
	}
}

// runBackupJob performs one backup cycle.
func (s *Service) runBackupJob(ctx context.Context) {
	start := time.Now()

	if err := s.acquire(ctx, "scheduled backup"); err != nil {
		s.logger.Error("scheduled backup skipped", "error", err)
		return
	}
	content, err := EncodeRepository(ctx, s.repo)
	s.lease.Release()
	if err != nil {
		s.logger.Error("scheduled backup failed", "error", err)
		return
	}

	if s.backedUp && content == s.lastBackup {
		s.logger.Debug("scheduled backup skipped: program unchanged")
		return
	}

	obj, err := s.storeBackup(ctx, content)
	if err != nil {
		s.logger.Error("scheduled backup failed", "error", err)
		return
	}
	s.lastBackup = content
	s.backedUp = true

	s.logger.Info("scheduled backup completed",
		"key", obj.Key,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
