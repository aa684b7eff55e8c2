package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"
)

// RenderPruner deletes old render log entries. database.DB implements it.
type RenderPruner interface {
	CleanOldRenders(days int) error
}

// Scheduler runs periodic housekeeping: pruning the render log.
type Scheduler struct {
	db            RenderPruner
	retentionDays int
	interval      time.Duration
}

func New(db RenderPruner, retentionDays int) *Scheduler {
	return &Scheduler{db: db, retentionDays: retentionDays, interval: time.Hour}
}

// Run starts the housekeeping loop. It prunes once at startup and then hourly.
func (s *Scheduler) Run(ctx context.Context) {
	if s.retentionDays <= 0 {
		slog.Info("Render log retention disabled, scheduler not started")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "retention_days", s.retentionDays)

	s.safeTick()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.safeTick()
		}
	}
}

func (s *Scheduler) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in scheduler tick", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	s.tick()
}

func (s *Scheduler) tick() {
	if err := s.db.CleanOldRenders(s.retentionDays); err != nil {
		slog.Error("Failed to clean old renders", "error", err)
		return
	}
	slog.Debug("Pruned render log", "retention_days", s.retentionDays)
}
