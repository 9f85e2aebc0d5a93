package repository

import (
	"context"
	"time"

	"diligence-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportJobRepository handles database operations for report jobs
type ReportJobRepository struct {
	db *pgxpool.Pool
}

// NewReportJobRepository creates a new report job repository
func NewReportJobRepository(db *pgxpool.Pool) *ReportJobRepository {
	return &ReportJobRepository{db: db}
}

// Create creates a new report job
func (r *ReportJobRepository) Create(ctx context.Context, job *models.ReportJob) error {
	query := `
		INSERT INTO report_jobs (
			activity_id, status, current_step, steps, error_message
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		job.ActivityID,
		job.Status,
		job.CurrentStep,
		job.Steps,
		job.ErrorMessage,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)

	return err
}

// GetByID retrieves a report job by ID
func (r *ReportJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReportJob, error) {
	job := &models.ReportJob{}
	query := `
		SELECT id, activity_id, status, current_step, steps, error_message,
			created_at, updated_at, completed_at
		FROM report_jobs
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.ActivityID,
		&job.Status,
		&job.CurrentStep,
		&job.Steps,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	)

	if err != nil {
		return nil, err
	}

	if job.Steps == nil {
		job.Steps = make(models.ReportSteps, 0)
	}

	return job, nil
}

// GetByActivityID retrieves the latest report job for an activity
func (r *ReportJobRepository) GetByActivityID(ctx context.Context, activityID uuid.UUID) (*models.ReportJob, error) {
	job := &models.ReportJob{}
	query := `
		SELECT id, activity_id, status, current_step, steps, error_message,
			created_at, updated_at, completed_at
		FROM report_jobs
		WHERE activity_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, query, activityID).Scan(
		&job.ID,
		&job.ActivityID,
		&job.Status,
		&job.CurrentStep,
		&job.Steps,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	)

	if err != nil {
		return nil, err
	}

	if job.Steps == nil {
		job.Steps = make(models.ReportSteps, 0)
	}

	return job, nil
}

// UpdateStatus updates the status of a report job
func (r *ReportJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReportJobStatus) error {
	query := `
		UPDATE report_jobs SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// UpdateProgress updates the current step and step list of a report job
func (r *ReportJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.ReportSteps) error {
	query := `
		UPDATE report_jobs SET
			current_step = $2,
			steps = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, currentStep, steps)
	return err
}

// Complete marks a report job as completed
func (r *ReportJobRepository) Complete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	query := `
		UPDATE report_jobs SET
			status = $2,
			completed_at = $3,
			updated_at = $3
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.JobStatusCompleted, now)
	return err
}

// Fail marks a report job as failed
func (r *ReportJobRepository) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE report_jobs SET
			status = $2,
			error_message = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.JobStatusFailed, errorMessage)
	return err
}
