package services

import (
	"context"
	"time"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// ===== REPOSITORY MOCKS =====

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Question), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) GetByCourse(ctx context.Context, courseID uint) ([]*models.Question, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetRandomByCourse(ctx context.Context, courseID uint, count int) ([]*models.Question, error) {
	args := m.Called(ctx, courseID, count)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) MaxNumber(ctx context.Context, courseID *uint, createdBy string) (int, error) {
	args := m.Called(ctx, courseID, createdBy)
	return args.Int(0), args.Error(1)
}

type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseRepository) Update(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCourseRepository) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Course), args.Get(1).(int64), args.Error(2)
}

func (m *MockCourseRepository) GetStats(ctx context.Context, id uint) (*repositories.CourseStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.CourseStats), args.Error(1)
}

type MockExamRepository struct {
	mock.Mock
}

func (m *MockExamRepository) Create(ctx context.Context, session *models.ExamSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockExamRepository) GetByID(ctx context.Context, id uint) (*models.ExamSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamSession), args.Error(1)
}

func (m *MockExamRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.ExamSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamSession), args.Error(1)
}

func (m *MockExamRepository) Update(ctx context.Context, session *models.ExamSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockExamRepository) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.ExamSession), args.Get(1).(int64), args.Error(2)
}

func (m *MockExamRepository) GetActiveByUser(ctx context.Context, userID string, courseID uint) (*models.ExamSession, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamSession), args.Error(1)
}

func (m *MockExamRepository) ListExpired(ctx context.Context, before time.Time) ([]*models.ExamSession, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]*models.ExamSession), args.Error(1)
}

func (m *MockExamRepository) MarkSubmitted(ctx context.Context, id uint, status models.SessionStatus, reason models.SessionEndReason, endedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, reason, endedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockExamRepository) SaveAnswer(ctx context.Context, examQuestion *models.ExamQuestion) error {
	args := m.Called(ctx, examQuestion)
	return args.Error(0)
}

func (m *MockExamRepository) UpdateResults(ctx context.Context, sessionID uint, results []models.ExamQuestion, score int) error {
	args := m.Called(ctx, sessionID, results, score)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockImportJobRepository struct {
	mock.Mock
}

func (m *MockImportJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockImportJobRepository) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportJob), args.Error(1)
}

func (m *MockImportJobRepository) Update(ctx context.Context, job *models.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockImportJobRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.ImportJob, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*models.ImportJob), args.Get(1).(int64), args.Error(2)
}

// MockRepository bundles the per-aggregate mocks; WithTransaction runs fn
// against the same bundle.
type MockRepository struct {
	question  *MockQuestionRepository
	course    *MockCourseRepository
	exam      *MockExamRepository
	user      *MockUserRepository
	importJob *MockImportJobRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		question:  new(MockQuestionRepository),
		course:    new(MockCourseRepository),
		exam:      new(MockExamRepository),
		user:      new(MockUserRepository),
		importJob: new(MockImportJobRepository),
	}
}

func (m *MockRepository) Question() repositories.QuestionRepository   { return m.question }
func (m *MockRepository) Course() repositories.CourseRepository       { return m.course }
func (m *MockRepository) Exam() repositories.ExamRepository           { return m.exam }
func (m *MockRepository) User() repositories.UserRepository           { return m.user }
func (m *MockRepository) ImportJob() repositories.ImportJobRepository { return m.importJob }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repo repositories.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }
