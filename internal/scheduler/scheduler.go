package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/noveee/SinisterBot/internal/domain"
)

// CycleRunner runs one full poll cycle.
type CycleRunner interface {
	Run(ctx context.Context) (*domain.CycleStats, error)
}

// Scheduler drives poll cycles on a fixed interval. A failed cycle is logged
// and treated as completed; nothing propagates out of the loop except the
// shutdown signal itself.
type Scheduler struct {
	runner       CycleRunner
	interval     time.Duration
	cycleTimeout time.Duration
	logger       *slog.Logger
}

func New(runner CycleRunner, interval, cycleTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:       runner,
		interval:     interval,
		cycleTimeout: cycleTimeout,
		logger:       logger.With("component", "scheduler"),
	}
}

// Start blocks until ctx is cancelled, running one cycle immediately and then
// one per interval. Cancellation interrupts the sleep between cycles promptly.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.cycleTimeout)
	defer cancel()

	if _, err := s.runner.Run(cycleCtx); err != nil {
		s.logger.Error("cycle failed", "error", err)
	}
}
