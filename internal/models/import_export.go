package models

import (
	"time"

	"gorm.io/datatypes"
)

type ImportJobStatus string

const (
	ImportPending    ImportJobStatus = "pending"
	ImportProcessing ImportJobStatus = "processing"
	ImportCompleted  ImportJobStatus = "completed"
	ImportFailed     ImportJobStatus = "failed"
)

// ImportJob records one file import for user feedback and audit.
type ImportJob struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"` // UUID
	UserID   string `json:"user_id" gorm:"not null;index;size:255"`
	CourseID *uint  `json:"course_id" gorm:"index"` // nil for user-pool imports

	FileName string `json:"file_name" gorm:"not null;size:255"`
	FileType string `json:"file_type" gorm:"not null;size:20"` // md, txt, csv, xlsx
	FileSize int64  `json:"file_size"`

	Status ImportJobStatus `json:"status" gorm:"default:pending;index"`

	TotalBlocks   int `json:"total_blocks"`
	ImportedCount int `json:"imported_count"`
	SkippedCount  int `json:"skipped_count"`

	// Errors holds []ImportValidationError for the skipped entries.
	Errors datatypes.JSON `json:"errors" gorm:"type:jsonb"`

	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (ImportJob) TableName() string {
	return "import_jobs"
}

// ImportValidationError locates one skipped block or row so the user can
// find and fix it in the source file.
type ImportValidationError struct {
	Row     int    `json:"row"`    // 1-based block index or file row
	Number  int    `json:"number"` // question number, when one was parsed
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ImportSummary is what the caller shows the user: "imported N, skipped M".
type ImportSummary struct {
	TotalBlocks   int                     `json:"total_blocks"`
	ImportedCount int                     `json:"imported_count"`
	SkippedCount  int                     `json:"skipped_count"`
	Errors        []ImportValidationError `json:"errors,omitempty"`
	Questions     []*Question             `json:"questions,omitempty"`
}
