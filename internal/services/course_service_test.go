package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestCourseService(repo *MockRepository) *courseService {
	return NewCourseService(repo, slog.Default(), validator.New()).(*courseService)
}

func TestCourseCreate(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestCourseService(repo)

	repo.course.On("Create", mock.Anything, mock.AnythingOfType("*models.Course")).Return(nil)

	course, err := svc.Create(context.Background(), &CreateCourseRequest{
		Name:         "Network Fundamentals",
		Duration:     60,
		MaxQuestions: 40,
	}, "user-1")

	require.NoError(t, err)
	assert.Equal(t, "Network Fundamentals", course.Name)
	assert.Equal(t, 60, course.Duration)
	assert.Equal(t, "user-1", course.CreatedBy)
	repo.course.AssertExpectations(t)
}

func TestCourseCreate_DurationBounds(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestCourseService(repo)

	_, err := svc.Create(context.Background(), &CreateCourseRequest{
		Name:     "Too short",
		Duration: 2,
	}, "user-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	repo.course.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCourseGetByID_NotFound(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestCourseService(repo)

	repo.course.On("GetByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseUpdate_OwnershipEnforced(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestCourseService(repo)

	repo.course.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Course{ID: 1, CreatedBy: "owner", Duration: 60}, nil)

	name := "Renamed"
	_, err := svc.Update(context.Background(), 1, &UpdateCourseRequest{Name: &name}, "stranger", false)
	assert.ErrorIs(t, err, ErrCourseAccessDenied)

	repo.course.On("Update", mock.Anything, mock.AnythingOfType("*models.Course")).Return(nil)
	course, err := svc.Update(context.Background(), 1, &UpdateCourseRequest{Name: &name}, "stranger", true)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", course.Name)
}

func TestCourseDelete_BlockedBySessions(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestCourseService(repo)

	repo.course.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Course{ID: 1, CreatedBy: "owner"}, nil)
	repo.course.On("GetStats", mock.Anything, uint(1)).
		Return(&repositories.CourseStats{QuestionCount: 10, SessionCount: 3}, nil)

	err := svc.Delete(context.Background(), 1, "owner", false)

	assert.ErrorIs(t, err, ErrCourseNotDeletable)
	repo.course.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCourseDelete_EmptyCourseRemoved(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestCourseService(repo)

	repo.course.On("GetByID", mock.Anything, uint(2)).
		Return(&models.Course{ID: 2, CreatedBy: "owner"}, nil)
	repo.course.On("GetStats", mock.Anything, uint(2)).
		Return(&repositories.CourseStats{QuestionCount: 4, SessionCount: 0}, nil)
	repo.course.On("Delete", mock.Anything, uint(2)).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), 2, "owner", false))
	repo.course.AssertExpectations(t)
}

func TestCourseGetStats(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestCourseService(repo)

	stats := &repositories.CourseStats{QuestionCount: 12, SessionCount: 5}
	repo.course.On("GetByID", mock.Anything, uint(3)).
		Return(&models.Course{ID: 3}, nil)
	repo.course.On("GetStats", mock.Anything, uint(3)).Return(stats, nil)

	got, err := svc.GetStats(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}
