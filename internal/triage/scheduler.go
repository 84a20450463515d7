package triage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hnguyen/mailtriage/internal/mail"
)

// Scheduler runs scans on a fixed interval until its context is canceled.
type Scheduler struct {
	runner   *Runner
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a Scheduler. Intervals below one second are raised
// to one minute.
func NewScheduler(
	runner *Runner, interval time.Duration, logger *zap.Logger,
) *Scheduler {
	if interval < time.Second {
		interval = time.Minute
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run scans immediately, then on every tick. Connection failures stop the
// loop; the process supervisor decides whether to restart.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.scanOnce(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.scanOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *Scheduler) scanOnce(ctx context.Context) error {
	report, err := s.runner.Scan(ctx)
	if err != nil {
		if mail.IsConnectionError(err) {
			s.logger.Error("scan aborted", zap.Error(err))
			return err
		}
		s.logger.Error("scan failed", zap.Error(err))
		return err
	}

	s.logger.Info("scan complete",
		zap.Int("scanned", report.Scanned),
		zap.Int("drafted", report.Drafted),
		zap.Int("audited", report.Audited),
		zap.Int("skipped_seen", report.SkippedSeen),
		zap.Int("skipped_followup", report.SkippedFollowup),
		zap.Int("failed", report.Failed),
	)
	return nil
}
