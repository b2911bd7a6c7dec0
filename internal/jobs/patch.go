package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/user/swordfinder/internal/adapters/repository"
	"github.com/user/swordfinder/pkg/logger"
	"github.com/user/swordfinder/pkg/metrics"
)

// PatchJobType names the bulk fill-if-null job.
const PatchJobType = "patch"

const defaultBatchSize = 1000

// PatchJobOption applies a configuration option to the PatchJob.
type PatchJobOption func(*PatchJob)

// WithBatchSize sets how many records are applied per commit.
func WithBatchSize(n int) PatchJobOption {
	return func(j *PatchJob) {
		if n > 0 {
			j.batchSize = n
		}
	}
}

// WithPatchLogger sets a custom logger.
func WithPatchLogger(l logger.Logger) PatchJobOption {
	return func(j *PatchJob) {
		if l != nil {
			j.logger = l
		}
	}
}

// PatchJob streams the bulk source through the store in fixed-size batches,
// committing each batch in its own transaction. Only NULL columns are filled;
// populated values are never overwritten. Progress lands on the tracker after
// every commit, so an interrupted run keeps everything already applied.
type PatchJob struct {
	store     repository.Store
	source    BulkSource
	batchSize int
	logger    logger.Logger
}

// NewPatchJob creates the patch job over store and source.
func NewPatchJob(store repository.Store, source BulkSource, opts ...PatchJobOption) *PatchJob {
	j := &PatchJob{
		store:     store,
		source:    source,
		batchSize: defaultBatchSize,
		logger:    logger.Get().Named("patch-job"),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Type implements Runner.
func (j *PatchJob) Type() string { return PatchJobType }

// Run implements Runner.
func (j *PatchJob) Run(ctx context.Context, t *Tracker) error {
	t.SetStep("opening source")
	total, err := j.source.Open()
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer j.source.Close()
	if total > 0 {
		t.SetExpectedTotal(total)
	}

	t.SetStep("applying batches")
	for {
		if t.Cancelled() {
			t.SetStep("cancelled")
			j.logger.Info(ctx, "patch job cancelled between batches")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := j.source.Next(j.batchSize)
		done := errors.Is(err, io.EOF)
		if err != nil && !done {
			return fmt.Errorf("read batch: %w", err)
		}

		if len(batch) > 0 {
			updated, err := j.store.ApplyPatch(ctx, batch)
			if err != nil {
				return fmt.Errorf("apply batch: %w", err)
			}
			metrics.RecordJobBatch(PatchJobType)
			metrics.RecordJobRowsUpdated(PatchJobType, updated)
			t.AddProgress(len(batch), updated)
		}

		if done {
			break
		}
	}

	t.SetStep("done")
	return nil
}
