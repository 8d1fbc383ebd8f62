package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	// Duration is the exam wall-clock limit in minutes.
	Duration int `json:"duration" gorm:"not null;default:60" validate:"required,min=5,max=300"`

	// MaxQuestions caps how many questions one exam session draws from the
	// course pool; 0 falls back to the service-wide default.
	MaxQuestions int `json:"max_questions" gorm:"default:0" validate:"min=0,max=200"`

	CreatedBy string `json:"created_by" gorm:"size:255;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:CourseID"`

	// Computed, not stored
	QuestionCount int `json:"question_count" gorm:"-"`
}

func (Course) TableName() string {
	return "courses"
}
