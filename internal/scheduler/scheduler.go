// Package scheduler keeps the radar frame cache warm so interactive map
// loads rarely pay discovery latency after a TTL expiry.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// FrameRefresher refreshes the frame list, typically the radar manager.
type FrameRefresher interface {
	RefreshFrames(ctx context.Context)
}

// Scheduler periodically refreshes the radar frame cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher FrameRefresher
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler. An interval of 0 disables scheduling.
func New(refresher FrameRefresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the refresh job and starts the scheduler in the
// background.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("frame warm-refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.logger.Debug("refreshing frame cache")
		s.refresher.RefreshFrames(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("frame warm-refresh scheduled", "interval", s.interval)
	return nil
}

// Stop stops the scheduler and cancels future jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
