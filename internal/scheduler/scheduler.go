// Package scheduler runs the periodic Google Scholar sync.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/facultyhub/pubdir/internal/directory"
)

// Syncer refreshes every linked faculty member. *directory.Service satisfies it.
type Syncer interface {
	SyncAll(ctx context.Context) (directory.SyncAllResult, error)
}

// Scheduler invokes a Syncer at each tick of a cron schedule.
type Scheduler struct {
	schedule cron.Schedule
	syncer   Syncer
	logger   *slog.Logger
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
}

// New creates a Scheduler.
func New(schedule cron.Schedule, syncer Syncer, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		schedule: schedule,
		syncer:   syncer,
		logger:   logger,
		now:      time.Now,
		after:    time.After,
	}
}

// Run blocks, syncing at every tick until ctx is done. A failed run is logged
// and the next tick proceeds as usual.
func (s *Scheduler) Run(ctx context.Context) {
	for ctx.Err() == nil {
		now := s.now()
		next := s.schedule.Next(now)
		if next.IsZero() {
			s.logger.Warn("sync schedule has no future ticks; scheduler stopped")
			return
		}
		wait := next.Sub(now)
		s.logger.Info("next scholar sync scheduled", "at", next.Format(time.RFC3339), "in", wait.Round(time.Second))

		select {
		case <-ctx.Done():
			return
		case <-s.after(wait):
		}

		s.tick(ctx)
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := s.now()
	res, err := s.syncer.SyncAll(ctx)
	if err != nil {
		s.logger.Error("scheduled scholar sync failed", "error", err)
		return
	}
	s.logger.Info("scheduled scholar sync finished",
		"synced", res.Synced,
		"failed", res.Failed,
		"added", res.Added,
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
}
