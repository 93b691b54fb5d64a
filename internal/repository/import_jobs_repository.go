package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/models"
)

// ImportJobsRepository persists import job records for audit and
// progress reporting.
type ImportJobsRepository struct {
	db *gorm.DB
}

func NewImportJobsRepository(db *gorm.DB) *ImportJobsRepository {
	return &ImportJobsRepository{db: db}
}

// Create inserts a new job record.
func (r *ImportJobsRepository) Create(ctx context.Context, job *models.ImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// UpdateProgress writes a progress checkpoint. The guard clause keeps
// processed_rows monotonic even if a stale checkpoint write lands late.
func (r *ImportJobsRepository) UpdateProgress(ctx context.Context, jobID uuid.UUID, processedRows int) error {
	return r.db.WithContext(ctx).Model(&models.ImportJob{}).
		Where("id = ? AND processed_rows < ?", jobID, processedRows).
		Update("processed_rows", processedRows).Error
}

// Finalize writes the terminal state of a job. The same terminal values
// can be written again safely, so a retried finalize is a no-op.
func (r *ImportJobsRepository) Finalize(ctx context.Context, job *models.ImportJob) error {
	return r.db.WithContext(ctx).Model(&models.ImportJob{}).
		Where("id = ?", job.ID).
		Updates(map[string]interface{}{
			"status":         job.Status,
			"processed_rows": job.ProcessedRows,
			"success_count":  job.SuccessCount,
			"error_count":    job.ErrorCount,
			"errors":         job.Errors,
			"completed_at":   job.CompletedAt,
		}).Error
}

// GetByID retrieves a job record by id.
func (r *ImportJobsRepository) GetByID(ctx context.Context, jobID uuid.UUID) (*models.ImportJob, error) {
	var job models.ImportJob
	err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns job records newest first, for the import history screen.
func (r *ImportJobsRepository) List(ctx context.Context, page, limit int) ([]models.ImportJob, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ImportJob{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count import jobs: %w", err)
	}

	var jobs []models.ImportJob
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}
