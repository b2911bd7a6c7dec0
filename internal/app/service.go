// Package app provides the core business service that implements the
// dependencies required by the HTTP API: the per-date result cache, video
// enrichment, job control and store statistics.
package app

import (
	"context"
	"sync"

	"github.com/user/swordfinder/internal/adapters/repository"
	"github.com/user/swordfinder/internal/domain/scoring"
	"github.com/user/swordfinder/internal/jobs"
	"github.com/user/swordfinder/internal/playbyplay"
	"github.com/user/swordfinder/internal/video"
	"github.com/user/swordfinder/pkg/logger"
)

// Service wires the domain layers together behind one façade.
type Service struct {
	mu sync.Mutex

	store      repository.Store
	engine     *scoring.Engine
	resolver   *video.Resolver
	downloader *video.Downloader
	feed       *playbyplay.Client
	jobs       *jobs.Manager

	// dateLocks serializes compute per date so concurrent readers of an
	// uncached date trigger exactly one computation.
	dateLocks map[string]*sync.Mutex

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngine sets the scoring engine.
func WithEngine(e *scoring.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithResolver sets the video resolver.
func WithResolver(r *video.Resolver) Option {
	return func(s *Service) {
		s.resolver = r
	}
}

// WithDownloader sets the video downloader.
func WithDownloader(d *video.Downloader) Option {
	return func(s *Service) {
		s.downloader = d
	}
}

// WithPlayByPlay sets the play-by-play lookup client.
func WithPlayByPlay(c *playbyplay.Client) Option {
	return func(s *Service) {
		s.feed = c
	}
}

// WithJobManager sets the background job manager.
func WithJobManager(m *jobs.Manager) Option {
	return func(s *Service) {
		s.jobs = m
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a service over the store with configuration options.
func NewService(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		engine:    scoring.NewEngine(),
		dateLocks: make(map[string]*sync.Mutex),
		logger:    logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start marks the service ready. Idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.started = true
	s.logger.Info(ctx, "service started")
	return nil
}

// Stop waits for in-flight jobs and releases the store. Idempotent.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false

	if s.jobs != nil {
		s.jobs.Wait()
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "store close failed", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "service stopped")
	return nil
}

// StartJob launches a background job and returns its run id.
func (s *Service) StartJob(ctx context.Context, jobType string) (string, error) {
	if s.jobs == nil {
		return "", jobs.ErrUnknownJob
	}
	return s.jobs.Start(ctx, jobType)
}

// CancelJob requests a cooperative stop of a background job.
func (s *Service) CancelJob(jobType string) error {
	if s.jobs == nil {
		return jobs.ErrUnknownJob
	}
	return s.jobs.Cancel(jobType)
}

// JobStatus returns a snapshot of a job's status record.
func (s *Service) JobStatus(jobType string) (jobs.Snapshot, error) {
	if s.jobs == nil {
		return jobs.Snapshot{}, jobs.ErrUnknownJob
	}
	return s.jobs.Status(jobType)
}

// StoreStats returns row counts for monitoring.
func (s *Service) StoreStats(ctx context.Context) (repository.Stats, error) {
	return s.store.Stats(ctx)
}

// dateLock returns the mutex guarding computation for one date, creating it
// on first use. Locks are never removed; the set of dates is small.
func (s *Service) dateLock(date string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.dateLocks[date]
	if !ok {
		l = &sync.Mutex{}
		s.dateLocks[date] = l
	}
	return l
}
