package repository

import (
	"context"

	"diligence-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityRepository handles database operations for activities
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Upsert inserts an activity or refreshes the CRM-owned fields of an
// existing one, keyed by the CRM guarantee id
func (r *ActivityRepository) Upsert(ctx context.Context, activity *models.Activity) error {
	query := `
		INSERT INTO activities (
			guarantee_id, responsible_person, tax_id, guarantee, participants
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guarantee_id) DO UPDATE SET
			responsible_person = EXCLUDED.responsible_person,
			tax_id = EXCLUDED.tax_id,
			guarantee = EXCLUDED.guarantee,
			participants = EXCLUDED.participants,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		activity.GuaranteeID,
		activity.ResponsiblePerson,
		activity.TaxID,
		activity.Guarantee,
		activity.Participants,
	).Scan(&activity.ID, &activity.CreatedAt, &activity.UpdatedAt)

	return err
}

// GetByID retrieves an activity by ID
func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	activity := &models.Activity{}
	query := `
		SELECT id, guarantee_id, responsible_person, tax_id, guarantee,
			participants, report_content, created_at, updated_at, completed_at
		FROM activities
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&activity.ID,
		&activity.GuaranteeID,
		&activity.ResponsiblePerson,
		&activity.TaxID,
		&activity.Guarantee,
		&activity.Participants,
		&activity.ReportContent,
		&activity.CreatedAt,
		&activity.UpdatedAt,
		&activity.CompletedAt,
	)

	if err != nil {
		return nil, err
	}

	return activity, nil
}

// ListUnfinished retrieves activities that still lack a report
func (r *ActivityRepository) ListUnfinished(ctx context.Context) ([]*models.Activity, error) {
	query := `
		SELECT id, guarantee_id, responsible_person, tax_id, guarantee,
			participants, report_content, created_at, updated_at, completed_at
		FROM activities
		WHERE report_content IS NULL
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		activity := &models.Activity{}
		err := rows.Scan(
			&activity.ID,
			&activity.GuaranteeID,
			&activity.ResponsiblePerson,
			&activity.TaxID,
			&activity.Guarantee,
			&activity.Participants,
			&activity.ReportContent,
			&activity.CreatedAt,
			&activity.UpdatedAt,
			&activity.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}

	return activities, rows.Err()
}

// UpdateReportContent stores the rendered report and marks the activity done
func (r *ActivityRepository) UpdateReportContent(ctx context.Context, id uuid.UUID, content string) error {
	query := `
		UPDATE activities SET
			report_content = $2,
			completed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, content)
	return err
}

// Delete deletes an activity
func (r *ActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM activities WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
