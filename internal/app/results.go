package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/swordfinder/internal/adapters/repository"
	"github.com/user/swordfinder/internal/domain/filter"
	"github.com/user/swordfinder/internal/domain/model"
	"github.com/user/swordfinder/pkg/logger"
	"github.com/user/swordfinder/pkg/metrics"
)

// SwordsForDate returns the cached top-N ranking for a date, computing and
// persisting it on first request. A completed set, empty ones included, is
// returned unchanged on every later call until explicit invalidation. The
// per-date lock guarantees concurrent first readers compute exactly once.
func (s *Service) SwordsForDate(ctx context.Context, date string) (*model.QueryResultSet, error) {
	lock := s.dateLock(date)
	lock.Lock()
	defer lock.Unlock()

	set, err := s.store.ResultSet(ctx, date)
	if err == nil && set.Completed {
		metrics.RecordCacheHit()
		return set, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load result set: %w", err)
	}
	metrics.RecordCacheMiss()

	return s.compute(ctx, date)
}

// Invalidate drops a date's cached ranking so the next read recomputes.
func (s *Service) Invalidate(ctx context.Context, date string) error {
	lock := s.dateLock(date)
	lock.Lock()
	defer lock.Unlock()

	return s.store.InvalidateResultSet(ctx, date)
}

// compute runs the full pipeline for a date. Caller holds the date lock.
func (s *Service) compute(ctx context.Context, date string) (*model.QueryResultSet, error) {
	start := time.Now()

	events, err := s.store.PitchEventsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load pitch events: %w", err)
	}

	candidates := filter.Candidates(events)
	metrics.RecordCandidatesFound(len(candidates))

	swings, err := s.engine.RankDate(candidates)
	if err != nil {
		metrics.RecordScoringError()
		return nil, fmt.Errorf("rank date %s: %w", date, err)
	}
	for range swings {
		metrics.RecordSwingScored()
	}

	set := &model.QueryResultSet{
		Date:         date,
		Swings:       swings,
		Completed:    true,
		TotalPitches: len(events),
		ComputedAt:   time.Now().UTC(),
	}
	if err := s.store.SaveResultSet(ctx, set); err != nil {
		return nil, fmt.Errorf("save result set: %w", err)
	}

	metrics.RecordDateComputed()
	metrics.RecordComputeDuration(float64(time.Since(start).Milliseconds()))
	s.logger.Info(ctx, "date computed",
		logger.String("date", date),
		logger.Int("pitches", len(events)),
		logger.Int("candidates", len(candidates)),
		logger.Int("ranked", len(swings)),
	)
	return set, nil
}
