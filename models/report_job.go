package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReportJobStatus represents the status of a report generation job
type ReportJobStatus string

const (
	JobStatusPending    ReportJobStatus = "pending"
	JobStatusInProgress ReportJobStatus = "in_progress"
	JobStatusCompleted  ReportJobStatus = "completed"
	JobStatusFailed     ReportJobStatus = "failed"
)

// ReportStep represents a step in the report pipeline
type ReportStep struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // "pending", "in_progress", "completed", "failed"
	Description string `json:"description,omitempty"`
}

// ReportSteps represents the ordered list of report pipeline steps
type ReportSteps []ReportStep

// Value implements driver.Valuer for JSONB
func (s ReportSteps) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *ReportSteps) Scan(value interface{}) error {
	if value == nil {
		*s = make(ReportSteps, 0)
		return nil
	}

	// Handle different types that pgx might return for JSONB
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*s = make(ReportSteps, 0)
		return nil
	}

	if len(bytes) == 0 {
		*s = make(ReportSteps, 0)
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// ReportJob represents one due-diligence report generation job
type ReportJob struct {
	ID           uuid.UUID       `json:"id"`
	ActivityID   uuid.UUID       `json:"activity_id"`
	Status       ReportJobStatus `json:"status"`
	CurrentStep  *string         `json:"current_step,omitempty"`
	Steps        ReportSteps     `json:"steps"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}
