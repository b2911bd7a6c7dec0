// Package scheduler pre-warms the result cache on a cron schedule so the
// first reader of a finished day hits a completed set.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user/swordfinder/pkg/logger"
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNow overrides the clock used to derive "yesterday". Tests only.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// Scheduler runs the pre-warm computation on a cron expression.
type Scheduler struct {
	cron    *cron.Cron
	compute func(ctx context.Context, date string) error
	now     func() time.Time
	logger  logger.Logger
}

// New creates a scheduler around a compute callback.
func New(compute func(ctx context.Context, date string) error, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:    cron.New(),
		compute: compute,
		now:     time.Now,
		logger:  logger.Get().Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the pre-warm entry and starts the cron loop. An empty
// schedule is a no-op.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() { s.prewarm(ctx) })
	if err != nil {
		return fmt.Errorf("register prewarm schedule: %w", err)
	}
	s.cron.Start()
	s.logger.Info(ctx, "prewarm scheduler started", logger.String("schedule", schedule))
	return nil
}

// Stop stops the cron loop and waits for a running entry to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Yesterday returns the previous calendar day in the scheduler's clock.
func (s *Scheduler) Yesterday() string {
	return s.now().AddDate(0, 0, -1).Format("2006-01-02")
}

func (s *Scheduler) prewarm(ctx context.Context) {
	date := s.Yesterday()
	if err := s.compute(ctx, date); err != nil {
		s.logger.Error(ctx, "prewarm failed",
			logger.String("date", date),
			logger.Error(err),
		)
		return
	}
	s.logger.Info(ctx, "prewarm done", logger.String("date", date))
}
