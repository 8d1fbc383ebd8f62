package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

// CourseService manages courses, the unit an exam session is taken
// against.
type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, userID string) (*models.Course, error)
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	Update(ctx context.Context, id uint, req *UpdateCourseRequest, userID string, isAdmin bool) (*models.Course, error)
	Delete(ctx context.Context, id uint, userID string, isAdmin bool) error
	List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error)
	GetStats(ctx context.Context, id uint) (*repositories.CourseStats, error)
}

type CreateCourseRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	Duration     int     `json:"duration" validate:"required,min=5,max=300"`
	MaxQuestions int     `json:"max_questions" validate:"min=0,max=200"`
}

type UpdateCourseRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	Duration     *int    `json:"duration" validate:"omitempty,min=5,max=300"`
	MaxQuestions *int    `json:"max_questions" validate:"omitempty,min=0,max=200"`
}

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, userID string) (*models.Course, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	course := &models.Course{
		Name:         req.Name,
		Description:  req.Description,
		Duration:     req.Duration,
		MaxQuestions: req.MaxQuestions,
		CreatedBy:    userID,
	}

	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", "course_id", course.ID, "name", course.Name, "user_id", userID)
	return course, nil
}

func (s *courseService) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *UpdateCourseRequest, userID string, isAdmin bool) (*models.Course, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if !isAdmin && course.CreatedBy != userID {
		return nil, ErrCourseAccessDenied
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.MaxQuestions != nil {
		course.MaxQuestions = *req.MaxQuestions
	}

	if err := s.repo.Course().Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.logger.Info("Course updated", "course_id", id, "user_id", userID)
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id uint, userID string, isAdmin bool) error {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}
	if !isAdmin && course.CreatedBy != userID {
		return ErrCourseAccessDenied
	}

	stats, err := s.repo.Course().GetStats(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get course stats: %w", err)
	}
	if stats.SessionCount > 0 {
		return ErrCourseNotDeletable
	}

	if err := s.repo.Course().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.logger.Info("Course deleted", "course_id", id, "user_id", userID)
	return nil
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	return s.repo.Course().List(ctx, filters)
}

func (s *courseService) GetStats(ctx context.Context, id uint) (*repositories.CourseStats, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Course().GetStats(ctx, id)
}
