package usecase

import (
	"context"
	"log/slog"
	"time"

	"hndigest/internal/ports"
)

// Scheduler wires the interval driver with the digest pipeline. Run
// timestamps are reported in the configured timezone.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	opts     RunOptions
	location *time.Location
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring digest runs; a
// nil location defaults to UTC.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, opts RunOptions, loc *time.Location, log *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{driver: driver, pipeline: pipeline, opts: opts, location: loc, logger: log}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		local := trigger.In(s.location)
		if s.logger != nil {
			s.logger.Info("scheduled digest run", "trigger", local.Format(time.RFC3339))
		}
		if err := s.pipeline.RunDigest(ctx, s.opts); err != nil && s.logger != nil {
			s.logger.Error("scheduled digest run failed", "trigger", local.Format(time.RFC3339), "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
