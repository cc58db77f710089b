// Package refresh drops cached upstream data on a cron schedule so the
// calendar service picks up entries changed by other clients.
package refresh

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Invalidator is anything holding a cache that can be dropped.
// *repo.CachedLogRepo satisfies it.
type Invalidator interface {
	Invalidate()
}

// Scheduler runs Invalidate on a standard five-field cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	target Invalidator
	logger *slog.Logger
}

// New validates spec and builds a stopped Scheduler.
func New(spec string, target Invalidator, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		target: target,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, s.Run); err != nil {
		return nil, fmt.Errorf("refresh.New: schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cache refresh scheduled", "next", s.cron.Entries()[0].Next)
}

// Run invalidates the target once.
func (s *Scheduler) Run() {
	s.target.Invalidate()
	s.logger.Debug("upstream cache invalidated")
}

// Stop halts the schedule. The returned context is done once any running
// invalidation has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
