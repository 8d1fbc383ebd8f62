package events

import (
	"time"
)

// EventType represents the domain events this service publishes.
type EventType string

const (
	// Exam session events
	EventExamStarted   EventType = "exam.started"
	EventExamSubmitted EventType = "exam.submitted"
	EventExamTimedOut  EventType = "exam.timed_out"

	// Import events
	EventImportCompleted EventType = "import.completed"
	EventImportFailed    EventType = "import.failed"
)

// Event is the envelope every published event uses.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Exam session event payloads

type ExamStartedEvent struct {
	SessionID     uint      `json:"session_id"`
	CourseID      uint      `json:"course_id"`
	CourseName    string    `json:"course_name"`
	UserID        string    `json:"user_id"`
	QuestionCount int       `json:"question_count"`
	StartedAt     time.Time `json:"started_at"`
	EndsAt        time.Time `json:"ends_at"`
}

type ExamSubmittedEvent struct {
	SessionID   uint      `json:"session_id"`
	CourseID    uint      `json:"course_id"`
	UserID      string    `json:"user_id"`
	Score       int       `json:"score"`
	EndReason   string    `json:"end_reason"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Import event payloads

type ImportCompletedEvent struct {
	JobID         string `json:"job_id"`
	UserID        string `json:"user_id"`
	CourseID      *uint  `json:"course_id,omitempty"`
	FileName      string `json:"file_name"`
	ImportedCount int    `json:"imported_count"`
	SkippedCount  int    `json:"skipped_count"`
}

type ImportFailedEvent struct {
	JobID    string `json:"job_id"`
	UserID   string `json:"user_id"`
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}
