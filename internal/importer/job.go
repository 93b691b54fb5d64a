package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
)

// JobTracker owns the lifecycle of one import job record. It is the only
// component that mutates the job: Checkpoint and Finalize are its sole
// mutation entry points, which keeps the counter invariants in one place.
type JobTracker struct {
	store  JobStore
	logger *logrus.Entry

	job          *models.ImportJob
	lastReported int
}

// NewJobTracker returns a tracker that persists through the given store.
func NewJobTracker(store JobStore, logger *logrus.Entry) *JobTracker {
	return &JobTracker{store: store, logger: logger}
}

// Create persists a new job record. The job is written directly in
// processing: the pending phase is not observable in this design, a job
// only exists once its run has started.
func (t *JobTracker) Create(ctx context.Context, totalRows int, createdBy string) (uuid.UUID, error) {
	if t.job != nil {
		return uuid.Nil, fmt.Errorf("job tracker already holds job %s", t.job.ID)
	}
	job := &models.ImportJob{
		ID:        uuid.New(),
		Status:    models.ImportStatusProcessing,
		TotalRows: totalRows,
		Errors:    models.RowErrorList{},
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	if err := t.store.Create(ctx, job); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create import job: %w", err)
	}
	t.job = job
	return job.ID, nil
}

// JobID returns the id of the tracked job, or uuid.Nil before Create.
func (t *JobTracker) JobID() uuid.UUID {
	if t.job == nil {
		return uuid.Nil
	}
	return t.job.ID
}

// Checkpoint records mid-run progress. Progress never decreases and
// never exceeds the fixed total. Checkpoint writes are best-effort:
// a failure is logged and the run continues, the final result does not
// depend on them.
func (t *JobTracker) Checkpoint(ctx context.Context, processedRows int) {
	if t.job == nil {
		return
	}
	if processedRows > t.job.TotalRows {
		processedRows = t.job.TotalRows
	}
	if processedRows <= t.lastReported {
		return
	}
	t.lastReported = processedRows
	t.job.ProcessedRows = processedRows

	if err := t.store.UpdateProgress(ctx, t.job.ID, processedRows); err != nil {
		t.logger.WithError(err).WithFields(logrus.Fields{
			"jobId":         t.job.ID,
			"processedRows": processedRows,
		}).Warn("Failed to checkpoint import progress")
	}
}

// Finalize writes the single terminal state of the job. Completed jobs
// always satisfy successCount+errorCount == totalRows. Re-finalizing
// with identical values (a caller retry after a transient write error)
// writes the same record and is safe.
func (t *JobTracker) Finalize(ctx context.Context, successCount, errorCount int, errs []models.ImportRowError) error {
	if t.job == nil {
		return fmt.Errorf("no job to finalize")
	}
	t.job.Status = models.ImportStatusCompleted
	t.job.ProcessedRows = t.job.TotalRows
	t.job.SuccessCount = successCount
	t.job.ErrorCount = errorCount
	t.job.Errors = models.RowErrorList(errs)
	if t.job.CompletedAt == nil {
		now := time.Now()
		t.job.CompletedAt = &now
	}

	// The terminal write must land even when the triggering request is
	// already gone.
	if err := t.store.Finalize(context.WithoutCancel(ctx), t.job); err != nil {
		return fmt.Errorf("failed to finalize import job: %w", err)
	}
	return nil
}

// Fail moves the job into its failed terminal state after a
// pipeline-level fault. Row-level errors never land here. The write is
// best-effort because the fault itself is already propagating to the
// caller.
func (t *JobTracker) Fail(ctx context.Context, cause error) {
	if t.job == nil {
		return
	}
	t.job.Status = models.ImportStatusFailed
	if t.job.CompletedAt == nil {
		now := time.Now()
		t.job.CompletedAt = &now
	}

	// A canceled request context is the most common cause of a failed
	// run, so the failed-status write cannot ride on it.
	if err := t.store.Finalize(context.WithoutCancel(ctx), t.job); err != nil {
		t.logger.WithError(err).WithField("jobId", t.job.ID).Error("Failed to mark import job as failed")
	}
	t.logger.WithError(cause).WithField("jobId", t.job.ID).Error("Import job failed")
}
