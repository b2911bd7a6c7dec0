package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/user/swordfinder/pkg/logger"
	"github.com/user/swordfinder/pkg/metrics"
)

// Runner is one background job implementation. It reports progress through
// the tracker and checks Cancelled between batches.
type Runner interface {
	// Type names the job, e.g. "patch".
	Type() string

	// Run executes the job to completion or error.
	Run(ctx context.Context, t *Tracker) error
}

// ManagerOption applies a configuration option to the Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets a custom logger.
func WithManagerLogger(l logger.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager owns one tracker per registered job type and enforces a single
// running instance per type. Statuses are read as snapshots at any time.
type Manager struct {
	mu       sync.Mutex
	runners  map[string]Runner
	trackers map[string]*Tracker
	wg       sync.WaitGroup
	logger   logger.Logger
}

// NewManager creates a manager with the given runners registered.
func NewManager(runners []Runner, opts ...ManagerOption) *Manager {
	m := &Manager{
		runners:  make(map[string]Runner, len(runners)),
		trackers: make(map[string]*Tracker, len(runners)),
		logger:   logger.Get().Named("jobs"),
	}
	for _, r := range runners {
		m.runners[r.Type()] = r
		m.trackers[r.Type()] = newTracker(r.Type())
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the named job in the background and returns its run id.
// Returns ErrUnknownJob for unregistered types and ErrAlreadyRunning when an
// instance of the type is still in flight.
func (m *Manager) Start(ctx context.Context, jobType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runner, ok := m.runners[jobType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownJob, jobType)
	}
	tracker := m.trackers[jobType]
	if tracker.running() {
		return "", fmt.Errorf("%w: %s", ErrAlreadyRunning, jobType)
	}

	runID := uuid.NewString()
	tracker.begin(runID)

	m.wg.Add(1)
	// The run outlives the caller (request contexts end at the 202); the
	// tracker's cancel flag is the stop mechanism.
	go m.run(context.WithoutCancel(ctx), runner, tracker, runID)

	m.logger.Info(ctx, "job started",
		logger.String("job", jobType),
		logger.String("run_id", runID),
	)
	return runID, nil
}

func (m *Manager) run(ctx context.Context, runner Runner, tracker *Tracker, runID string) {
	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordJobError(runner.Type())
			tracker.finish(StateError, fmt.Sprintf("panic: %v", r))
			m.logger.Error(ctx, "job panicked",
				logger.String("job", runner.Type()),
				logger.String("run_id", runID),
				logger.Any("panic", r),
			)
		}
	}()

	if err := runner.Run(ctx, tracker); err != nil {
		metrics.RecordJobError(runner.Type())
		tracker.finish(StateError, err.Error())
		m.logger.Error(ctx, "job failed",
			logger.String("job", runner.Type()),
			logger.String("run_id", runID),
			logger.Error(err),
		)
		return
	}

	tracker.finish(StateCompleted, "")
	m.logger.Info(ctx, "job finished",
		logger.String("job", runner.Type()),
		logger.String("run_id", runID),
	)
}

// Cancel requests a cooperative stop of the named job. The request is a flag
// the runner honors between batches; an idle job accepts and ignores it.
func (m *Manager) Cancel(jobType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tracker, ok := m.trackers[jobType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, jobType)
	}
	tracker.Cancel()
	return nil
}

// Status returns a snapshot of the named job's tracker.
func (m *Manager) Status(jobType string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tracker, ok := m.trackers[jobType]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownJob, jobType)
	}
	return tracker.Snapshot(), nil
}

// Wait blocks until every in-flight job returns. Used during shutdown.
func (m *Manager) Wait() {
	m.wg.Wait()
}
