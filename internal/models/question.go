package models

import (
	"time"

	"gorm.io/gorm"
)

// Option is one selectable choice within a question. Label is a short
// uppercase key ("A", "B", ... extendable to "AA", "AB", ...); insertion
// order is display order.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type Question struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	Number int  `json:"number" gorm:"not null;index"`

	Prompt  string   `json:"prompt" gorm:"type:text;not null" validate:"required"`
	Options []Option `json:"options" gorm:"serializer:json;type:jsonb" validate:"required,min=1"`

	// CorrectAnswer holds option labels. Order is significant for "order"
	// and "matching" questions and irrelevant for "single"/"multiple".
	CorrectAnswer []string `json:"correct_answer" gorm:"serializer:json;type:jsonb" validate:"required,min=1"`

	// SubQuestions pairs positionally with CorrectAnswer for "matching"
	// questions; empty otherwise.
	SubQuestions []string `json:"sub_questions,omitempty" gorm:"serializer:json;type:jsonb"`

	// Type may be empty for legacy rows; callers must go through
	// ResolvedType instead of reading this field directly.
	Type QuestionType `json:"question_type" gorm:"size:20;index" validate:"omitempty,question_type"`

	// IsMultipleChoice is the legacy multi-answer flag kept for records
	// imported before explicit types existed.
	IsMultipleChoice bool `json:"is_multiple_choice"`

	Explanation string `json:"explanation" gorm:"type:text"`

	// Ownership / scope
	CreatedBy string `json:"created_by" gorm:"size:255;index"`
	IsGlobal  bool   `json:"is_global" gorm:"default:false;index"`
	CourseID  *uint  `json:"course_id" gorm:"index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionText returns the text for a label, or "" when the label is unknown.
func (q *Question) OptionText(label string) string {
	for _, opt := range q.Options {
		if opt.Label == label {
			return opt.Text
		}
	}
	return ""
}

// HasOption reports whether a label references an option with non-blank text.
func (q *Question) HasOption(label string) bool {
	for _, opt := range q.Options {
		if opt.Label == label {
			return opt.Text != ""
		}
	}
	return false
}
