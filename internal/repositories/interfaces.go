package repositories

import (
	"context"
	"time"

	"github.com/examstack/exam-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Type      *models.QuestionType `json:"type"`
	CourseID  *uint                `json:"course_id"`
	CreatedBy *string              `json:"created_by"`
	IsGlobal  *bool                `json:"is_global"`
	Search    string               `json:"search"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "number", "created_at"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

type CourseFilters struct {
	CreatedBy *string `json:"created_by"`
	Search    string  `json:"search"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

type SessionFilters struct {
	Status   *models.SessionStatus `json:"status"`
	CourseID *uint                 `json:"course_id"`
	UserID   *string               `json:"user_id"`
	DateFrom *time.Time            `json:"date_from"`
	DateTo   *time.Time            `json:"date_to"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type CourseStats struct {
	QuestionCount  int      `json:"question_count"`
	SessionCount   int      `json:"session_count"`
	SubmittedCount int      `json:"submitted_count"`
	AverageScore   *float64 `json:"average_score"`
}

// ===== REPOSITORY INTERFACES =====

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
	GetByCourse(ctx context.Context, courseID uint) ([]*models.Question, error)
	GetRandomByCourse(ctx context.Context, courseID uint, count int) ([]*models.Question, error)
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
	MaxNumber(ctx context.Context, courseID *uint, createdBy string) (int, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)
	GetStats(ctx context.Context, id uint) (*CourseStats, error)
}

type ExamRepository interface {
	Create(ctx context.Context, session *models.ExamSession) error
	GetByID(ctx context.Context, id uint) (*models.ExamSession, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.ExamSession, error)
	Update(ctx context.Context, session *models.ExamSession) error

	List(ctx context.Context, filters SessionFilters) ([]*models.ExamSession, int64, error)
	GetActiveByUser(ctx context.Context, userID string, courseID uint) (*models.ExamSession, error)
	ListExpired(ctx context.Context, before time.Time) ([]*models.ExamSession, error)

	// MarkSubmitted flips an in-progress session to the given terminal
	// status and reports whether this call performed the flip. A false
	// return with a nil error means the session was already finalized.
	MarkSubmitted(ctx context.Context, id uint, status models.SessionStatus, reason models.SessionEndReason, endedAt time.Time) (bool, error)

	SaveAnswer(ctx context.Context, examQuestion *models.ExamQuestion) error
	UpdateResults(ctx context.Context, sessionID uint, results []models.ExamQuestion, score int) error
}

type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type ImportJobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, id string) (*models.ImportJob, error)
	Update(ctx context.Context, job *models.ImportJob) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.ImportJob, int64, error)
}

// Repository bundles the per-aggregate repositories plus transaction
// support: fn runs against a Repository bound to one transaction.
type Repository interface {
	Question() QuestionRepository
	Course() CourseRepository
	Exam() ExamRepository
	User() UserRepository
	ImportJob() ImportJobRepository

	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	Ping(ctx context.Context) error
}
