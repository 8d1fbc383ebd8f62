package postgres

import (
	"context"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	return c.db.WithContext(ctx).Create(course).Error
}

func (c CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := c.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}

	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("course_id = ?", id).
		Count(&count).Error; err != nil {
		return nil, err
	}
	course.QuestionCount = int(count)

	return &course, nil
}

func (c CoursePostgreSQL) Update(ctx context.Context, course *models.Course) error {
	return c.db.WithContext(ctx).Save(course).Error
}

func (c CoursePostgreSQL) Delete(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Delete(&models.Course{}, id).Error
}

func (c CoursePostgreSQL) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	var courses []*models.Course
	var total int64

	query := c.db.WithContext(ctx).Model(&models.Course{})
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filters.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("name ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (c CoursePostgreSQL) GetStats(ctx context.Context, id uint) (*repositories.CourseStats, error) {
	stats := &repositories.CourseStats{}

	var questionCount int64
	if err := c.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("course_id = ?", id).
		Count(&questionCount).Error; err != nil {
		return nil, err
	}
	stats.QuestionCount = int(questionCount)

	var sessionCount int64
	if err := c.db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("course_id = ?", id).
		Count(&sessionCount).Error; err != nil {
		return nil, err
	}
	stats.SessionCount = int(sessionCount)

	row := c.db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Select("COUNT(*), AVG(score)").
		Where("course_id = ? AND status = ?", id, models.SessionSubmitted).
		Row()
	if err := row.Scan(&stats.SubmittedCount, &stats.AverageScore); err != nil {
		return nil, err
	}

	return stats, nil
}
