// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the upload sweep every hour.
const DefaultSweepSchedule = "@hourly"

// Purger removes uploads created before a cutoff.
type Purger interface {
	Purge(ctx context.Context, before time.Time) (int, error)
}

// PurgeRecorder counts purged uploads.
type PurgeRecorder interface {
	AddUploadsPurged(n int)
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	uploads   Purger
	retention time.Duration
	schedule  string
	recorder  PurgeRecorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewScheduler creates a scheduler that deletes uploads older than retention.
func NewScheduler(uploads Purger, retention time.Duration, schedule string, recorder PurgeRecorder, logger *slog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	// Standard 5-field format, seconds disabled.
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		uploads:   uploads,
		retention: retention,
		schedule:  schedule,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.SweepUploads() }); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("schedule", s.schedule),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs. The returned context is done when
// running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// SweepUploads deletes uploads past their retention and returns how many.
func (s *Scheduler) SweepUploads() int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := s.now().Add(-s.retention)
	n, err := s.uploads.Purge(ctx, cutoff)
	if err != nil {
		s.logger.Error("upload sweep failed",
			slog.Int("purged", n),
			slog.Any("error", err),
		)
	}
	if s.recorder != nil && n > 0 {
		s.recorder.AddUploadsPurged(n)
	}

	s.logger.Info("upload sweep completed",
		slog.Int("purged", n),
		slog.Time("cutoff", cutoff),
	)
	return n
}
