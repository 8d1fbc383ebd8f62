package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

// QuestionService manages the question pool: per-user questions, global
// questions and course-scoped ones.
type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, userID string) (*models.Question, error)
	GetByID(ctx context.Context, id uint, userID string, isAdmin bool) (*models.Question, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string, isAdmin bool) (*models.Question, error)
	Delete(ctx context.Context, id uint, userID string, isAdmin bool) error
	List(ctx context.Context, filters repositories.QuestionFilters, userID string, isAdmin bool) ([]*models.Question, int64, error)
}

type CreateQuestionRequest struct {
	Number        int                 `json:"number" validate:"min=0"`
	Prompt        string              `json:"prompt" validate:"required"`
	Options       []models.Option     `json:"options" validate:"required,min=1"`
	CorrectAnswer []string            `json:"correct_answer" validate:"required,min=1"`
	SubQuestions  []string            `json:"sub_questions"`
	Type          models.QuestionType `json:"question_type" validate:"omitempty,question_type"`
	Explanation   string              `json:"explanation"`
	CourseID      *uint               `json:"course_id"`
	IsGlobal      bool                `json:"is_global"`
}

type UpdateQuestionRequest struct {
	Prompt        *string              `json:"prompt" validate:"omitempty,min=1"`
	Options       []models.Option      `json:"options"`
	CorrectAnswer []string             `json:"correct_answer"`
	SubQuestions  []string             `json:"sub_questions"`
	Type          *models.QuestionType `json:"question_type" validate:"omitempty,question_type"`
	Explanation   *string              `json:"explanation"`
}

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, userID string) (*models.Question, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	question := &models.Question{
		Number:        req.Number,
		Prompt:        req.Prompt,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		SubQuestions:  req.SubQuestions,
		Type:          req.Type,
		Explanation:   req.Explanation,
		CourseID:      req.CourseID,
		IsGlobal:      req.IsGlobal,
		CreatedBy:     userID,
	}
	question.Type = question.ResolvedType()

	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	if req.CourseID != nil {
		if _, err := s.repo.Course().GetByID(ctx, *req.CourseID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
	}

	if question.Number == 0 {
		max, err := s.repo.Question().MaxNumber(ctx, req.CourseID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute question number: %w", err)
		}
		question.Number = max + 1
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created",
		"question_id", question.ID,
		"number", question.Number,
		"type", question.Type,
		"user_id", userID)

	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint, userID string, isAdmin bool) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if !s.canAccess(question, userID, isAdmin) {
		return nil, ErrQuestionAccessDenied
	}
	return question, nil
}

func (s *questionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string, isAdmin bool) (*models.Question, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if !s.canModify(question, userID, isAdmin) {
		return nil, ErrQuestionAccessDenied
	}

	if req.Prompt != nil {
		question.Prompt = *req.Prompt
	}
	if req.Options != nil {
		question.Options = req.Options
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = req.CorrectAnswer
	}
	if req.SubQuestions != nil {
		question.SubQuestions = req.SubQuestions
	}
	if req.Type != nil {
		question.Type = *req.Type
	}
	if req.Explanation != nil {
		question.Explanation = *req.Explanation
	}
	question.Type = question.ResolvedType()

	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("Question updated", "question_id", id, "user_id", userID)
	return question, nil
}

func (s *questionService) Delete(ctx context.Context, id uint, userID string, isAdmin bool) error {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}
	if !s.canModify(question, userID, isAdmin) {
		return ErrQuestionAccessDenied
	}

	if err := s.repo.Question().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted", "question_id", id, "user_id", userID)
	return nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters, userID string, isAdmin bool) ([]*models.Question, int64, error) {
	// Non-admins only see their own questions unless asking for globals.
	if !isAdmin && (filters.IsGlobal == nil || !*filters.IsGlobal) {
		filters.CreatedBy = &userID
	}
	return s.repo.Question().List(ctx, filters)
}

// canAccess: owners, admins and anyone reading a global question.
func (s *questionService) canAccess(question *models.Question, userID string, isAdmin bool) bool {
	return isAdmin || question.IsGlobal || question.CreatedBy == userID
}

// canModify: owners and admins only.
func (s *questionService) canModify(question *models.Question, userID string, isAdmin bool) bool {
	return isAdmin || question.CreatedBy == userID
}
