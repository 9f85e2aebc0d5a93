package repository

import (
	"context"

	"diligence-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportFileRepository handles database operations for report artifacts
type ReportFileRepository struct {
	db *pgxpool.Pool
}

// NewReportFileRepository creates a new report file repository
func NewReportFileRepository(db *pgxpool.Pool) *ReportFileRepository {
	return &ReportFileRepository{db: db}
}

// Create creates a new report file record
func (r *ReportFileRepository) Create(ctx context.Context, file *models.ReportFile) error {
	query := `
		INSERT INTO report_files (
			activity_id, filename, mime_type, size, storage_path
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		file.ActivityID,
		file.Filename,
		file.MimeType,
		file.Size,
		file.StoragePath,
	).Scan(&file.ID, &file.CreatedAt)

	return err
}

// GetByID retrieves a report file by ID
func (r *ReportFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReportFile, error) {
	file := &models.ReportFile{}
	query := `
		SELECT id, activity_id, filename, mime_type, size, storage_path, created_at
		FROM report_files
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.ActivityID,
		&file.Filename,
		&file.MimeType,
		&file.Size,
		&file.StoragePath,
		&file.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return file, nil
}

// ListByActivityID retrieves all artifacts stored for an activity
func (r *ReportFileRepository) ListByActivityID(ctx context.Context, activityID uuid.UUID) ([]*models.ReportFile, error) {
	query := `
		SELECT id, activity_id, filename, mime_type, size, storage_path, created_at
		FROM report_files
		WHERE activity_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.ReportFile
	for rows.Next() {
		file := &models.ReportFile{}
		err := rows.Scan(
			&file.ID,
			&file.ActivityID,
			&file.Filename,
			&file.MimeType,
			&file.Size,
			&file.StoragePath,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// Delete deletes a report file record
func (r *ReportFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM report_files WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
