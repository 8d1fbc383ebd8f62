package postgres

import (
	"context"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type ImportJobPostgreSQL struct {
	db *gorm.DB
}

func NewImportJobPostgreSQL(db *gorm.DB) repositories.ImportJobRepository {
	return &ImportJobPostgreSQL{db: db}
}

func (i ImportJobPostgreSQL) Create(ctx context.Context, job *models.ImportJob) error {
	return i.db.WithContext(ctx).Create(job).Error
}

func (i ImportJobPostgreSQL) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	var job models.ImportJob
	if err := i.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (i ImportJobPostgreSQL) Update(ctx context.Context, job *models.ImportJob) error {
	return i.db.WithContext(ctx).Save(job).Error
}

func (i ImportJobPostgreSQL) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.ImportJob, int64, error) {
	var jobs []*models.ImportJob
	var total int64

	query := i.db.WithContext(ctx).Model(&models.ImportJob{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&jobs).Error; err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}
