package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamPostgreSQL struct {
	db *gorm.DB
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{db: db}
}

func (e ExamPostgreSQL) Create(ctx context.Context, session *models.ExamSession) error {
	return e.db.WithContext(ctx).Create(session).Error
}

func (e ExamPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ExamSession, error) {
	var session models.ExamSession
	if err := e.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (e ExamPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.ExamSession, error) {
	var session models.ExamSession
	if err := e.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("exam_questions.position ASC")
		}).
		Preload("Questions.Question").
		Preload("Course").
		First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (e ExamPostgreSQL) Update(ctx context.Context, session *models.ExamSession) error {
	return e.db.WithContext(ctx).Save(session).Error
}

func (e ExamPostgreSQL) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	var sessions []*models.ExamSession
	var total int64

	query := e.db.WithContext(ctx).Model(&models.ExamSession{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("started_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Preload("Course").Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (e ExamPostgreSQL) GetActiveByUser(ctx context.Context, userID string, courseID uint) (*models.ExamSession, error) {
	var session models.ExamSession
	err := e.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.SessionInProgress).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (e ExamPostgreSQL) ListExpired(ctx context.Context, before time.Time) ([]*models.ExamSession, error) {
	var sessions []*models.ExamSession
	if err := e.db.WithContext(ctx).
		Where("status = ? AND ends_at < ?", models.SessionInProgress, before).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// MarkSubmitted is the idempotency gate for finalizing a session: the
// conditional update succeeds for exactly one caller, everyone racing it
// sees zero rows affected.
func (e ExamPostgreSQL) MarkSubmitted(ctx context.Context, id uint, status models.SessionStatus, reason models.SessionEndReason, endedAt time.Time) (bool, error) {
	result := e.db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("id = ? AND status = ?", id, models.SessionInProgress).
		Updates(map[string]interface{}{
			"status":     status,
			"end_reason": reason,
			"ended_at":   endedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (e ExamPostgreSQL) SaveAnswer(ctx context.Context, examQuestion *models.ExamQuestion) error {
	return e.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_answer", "updated_at"}),
		}).
		Create(examQuestion).Error
}

func (e ExamPostgreSQL) UpdateResults(ctx context.Context, sessionID uint, results []models.ExamQuestion, score int) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range results {
			if err := tx.Model(&models.ExamQuestion{}).
				Where("session_id = ? AND question_id = ?", sessionID, results[i].QuestionID).
				Updates(map[string]interface{}{
					"is_correct":  results[i].IsCorrect,
					"user_answer": results[i].UserAnswer,
				}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.ExamSession{}).
			Where("id = ?", sessionID).
			Update("score", score).Error
	})
}
