package models

import (
	"time"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionSubmitted  SessionStatus = "submitted"
	SessionTimedOut   SessionStatus = "timed_out"
	SessionAbandoned  SessionStatus = "abandoned"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionInProgress, SessionSubmitted, SessionTimedOut, SessionAbandoned:
		return true
	}
	return false
}

type SessionEndReason string

const (
	EndReasonManual  SessionEndReason = "manual"
	EndReasonTimeout SessionEndReason = "timeout"
)

// ExamSession is one timed attempt: the questions presented, the answers
// given and the computed score. Once submitted it is immutable and kept
// for historical review.
type ExamSession struct {
	ID       uint          `json:"id" gorm:"primaryKey"`
	CourseID uint          `json:"course_id" gorm:"not null;index"`
	UserID   string        `json:"user_id" gorm:"not null;size:255;index"`
	Status   SessionStatus `json:"status" gorm:"default:in_progress;index"`

	StartedAt time.Time  `json:"started_at" gorm:"not null"`
	EndsAt    time.Time  `json:"ends_at" gorm:"not null"`
	EndedAt   *time.Time `json:"ended_at"`

	EndReason *SessionEndReason `json:"end_reason" gorm:"size:20"`

	// Score is the 0-100 percentage, nil until the session is finalized.
	Score *int `json:"score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Course    *Course        `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Questions []ExamQuestion `json:"questions" gorm:"foreignKey:SessionID"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}

// ExamQuestion is one question offered within a session, in presentation
// order. UserAnswer and IsCorrect stay nil until answered / finalized;
// IsCorrect remains nil after grading when the question was ungradable.
type ExamQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	SessionID  uint `json:"session_id" gorm:"not null;uniqueIndex:idx_exam_questions_session_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_exam_questions_session_question"`
	Position   int  `json:"position" gorm:"not null"`

	UserAnswer []string `json:"user_answer" gorm:"serializer:json;type:jsonb"`
	IsCorrect  *bool    `json:"is_correct"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}
