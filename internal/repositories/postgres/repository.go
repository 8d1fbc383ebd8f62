package postgres

import (
	"context"

	"github.com/examstack/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB

	question  repositories.QuestionRepository
	course    repositories.CourseRepository
	exam      repositories.ExamRepository
	user      repositories.UserRepository
	importJob repositories.ImportJobRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:        db,
		question:  NewQuestionPostgreSQL(db),
		course:    NewCoursePostgreSQL(db),
		exam:      NewExamPostgreSQL(db),
		user:      NewUserPostgreSQL(db),
		importJob: NewImportJobPostgreSQL(db),
	}
}

func (r *Repository) Question() repositories.QuestionRepository   { return r.question }
func (r *Repository) Course() repositories.CourseRepository       { return r.course }
func (r *Repository) Exam() repositories.ExamRepository           { return r.exam }
func (r *Repository) User() repositories.UserRepository           { return r.user }
func (r *Repository) ImportJob() repositories.ImportJobRepository { return r.importJob }

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
