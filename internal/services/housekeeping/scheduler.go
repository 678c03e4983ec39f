// Package housekeeping runs the retention purge: documents older than the
// configured age are deleted on a cron schedule, along with their stored
// bytes and engine assets.
package housekeeping

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/services/documents"
)

// Scheduler drives periodic retention runs.
type Scheduler struct {
	config    *common.RetentionConfig
	documents *documents.Service
	cron      *cron.Cron
	logger    arbor.ILogger
}

// NewScheduler creates the retention scheduler.
func NewScheduler(cfg *common.RetentionConfig, docs *documents.Service, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		config:    cfg,
		documents: docs,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start schedules the retention job. No-op when retention is disabled.
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Debug().Msg("Retention housekeeping disabled")
		return nil
	}

	schedule := s.config.Schedule
	if schedule == "" {
		// Default: daily at 03:00
		schedule = "0 3 * * *"
	}

	if _, err := time.ParseDuration(s.config.MaxAge); err != nil {
		return fmt.Errorf("invalid retention max_age '%s': %w", s.config.MaxAge, err)
	}

	if _, err := s.cron.AddFunc(schedule, s.runPurge); err != nil {
		return fmt.Errorf("invalid retention schedule '%s': %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Str("max_age", s.config.MaxAge).
		Msg("Retention housekeeping started")

	// Catch-up run so an instance that was down past its schedule does not
	// hold expired documents until the next tick.
	go s.RunNow()

	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("Retention housekeeping stopped")
}

// RunNow runs one purge synchronously.
func (s *Scheduler) RunNow() {
	s.runPurge()
}

func (s *Scheduler) runPurge() {
	maxAge, err := time.ParseDuration(s.config.MaxAge)
	if err != nil {
		s.logger.Error().Err(err).Msg("Retention purge skipped, invalid max_age")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-maxAge)
	deleted, err := s.documents.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("Retention purge failed")
		return
	}

	if deleted > 0 {
		s.logger.Info().
			Int("deleted", deleted).
			Str("cutoff", cutoff.Format(time.RFC3339)).
			Msg("Retention purge completed")
	}
}
