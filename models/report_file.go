package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportFile represents a stored report artifact or downloaded source document
type ReportFile struct {
	ID          uuid.UUID  `json:"id"`
	ActivityID  *uuid.UUID `json:"activity_id,omitempty"`
	Filename    string     `json:"filename"`
	MimeType    string     `json:"mime_type"`
	Size        int64      `json:"size"`
	StoragePath string     `json:"storage_path"`
	CreatedAt   time.Time  `json:"created_at"`
}
