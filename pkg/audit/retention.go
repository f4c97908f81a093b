package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/uth-confms/confms/pkg/observability"
)

// Cleaner removes audit events past their retention cutoff.
type Cleaner interface {
	Cleanup(ctx context.Context, policy RetentionPolicy) (int64, error)
}

// RetentionSweeper runs periodic cleanup of expired audit logs.
type RetentionSweeper struct {
	cleaner Cleaner
	policy  RetentionPolicy
	logger  *observability.Logger
	cron    *cron.Cron
}

// NewRetentionSweeper builds a sweeper for the given cleaner and policy.
func NewRetentionSweeper(cleaner Cleaner, policy RetentionPolicy, logger *observability.Logger) *RetentionSweeper {
	return &RetentionSweeper{
		cleaner: cleaner,
		policy:  policy,
		logger:  logger,
	}
}

// Start schedules the sweep. The schedule uses cron syntax, e.g.
// "0 3 * * *" for daily at 03:00.
func (s *RetentionSweeper) Start(schedule string) error {
	if !s.policy.Enabled {
		s.logger.Info("audit retention sweep disabled")
		return nil
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, s.sweep)
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}
	s.cron.Start()
	s.logger.WithField("schedule", schedule).
		WithField("retention_days", s.policy.RetentionDays).
		Info("audit retention sweep scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *RetentionSweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *RetentionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := s.cleaner.Cleanup(ctx, s.policy)
	if err != nil {
		s.logger.WithError(err).Error("audit retention sweep failed")
		return
	}
	s.logger.WithField("deleted", deleted).Info("audit retention sweep completed")
}
