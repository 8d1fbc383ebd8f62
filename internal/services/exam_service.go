package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/grading"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

// DefaultMaxQuestions caps a session's question draw when the course does
// not set its own limit.
const DefaultMaxQuestions = 40

const resultCacheTTL = 24 * time.Hour

// ExamService runs exam sessions: drawing questions, collecting answers
// and finalizing the score exactly once per session.
type ExamService interface {
	Start(ctx context.Context, req *StartExamRequest, userID string) (*models.ExamSession, error)
	GetSession(ctx context.Context, sessionID uint, userID string, isAdmin bool) (*models.ExamSession, error)
	SaveAnswer(ctx context.Context, sessionID uint, req *SaveAnswerRequest, userID string) error
	Submit(ctx context.Context, sessionID uint, userID string) (*ExamResult, error)
	GetResult(ctx context.Context, sessionID uint, userID string, isAdmin bool) (*ExamResult, error)
	History(ctx context.Context, userID string, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error)
	HandleTimeouts(ctx context.Context) (int, error)
}

type StartExamRequest struct {
	CourseID uint `json:"course_id" validate:"required"`
}

type SaveAnswerRequest struct {
	QuestionID uint     `json:"question_id" validate:"required"`
	Answer     []string `json:"answer"`
}

// ExamResult is the full review payload for a finalized session.
type ExamResult struct {
	SessionID     uint                     `json:"session_id"`
	CourseID      uint                     `json:"course_id"`
	Status        models.SessionStatus     `json:"status"`
	EndReason     *models.SessionEndReason `json:"end_reason"`
	Score         int                      `json:"score"`
	CorrectCount  int                      `json:"correct_count"`
	UngradedCount int                      `json:"ungraded_count"`
	TotalCount    int                      `json:"total_count"`
	StartedAt     time.Time                `json:"started_at"`
	EndedAt       *time.Time               `json:"ended_at"`
	Questions     []ExamResultQuestion     `json:"questions"`
}

type ExamResultQuestion struct {
	QuestionID    uint            `json:"question_id"`
	Number        int             `json:"number"`
	Prompt        string          `json:"prompt"`
	Options       []models.Option `json:"options"`
	SubQuestions  []string        `json:"sub_questions,omitempty"`
	UserAnswer    []string        `json:"user_answer"`
	CorrectAnswer []string        `json:"correct_answer"`
	IsCorrect     *bool           `json:"is_correct"`
	Explanation   string          `json:"explanation"`
}

type examService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.Publisher
	logger    *slog.Logger
	opLog     *ServiceLogger
	validator *validator.Validator
	now       func() time.Time
}

func NewExamService(repo repositories.Repository, cacheService cache.CacheService, publisher events.Publisher, logger *slog.Logger, validator *validator.Validator) ExamService {
	return &examService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		opLog:     NewServiceLogger(logger, "exam"),
		validator: validator,
		now:       time.Now,
	}
}

// ===== SESSION LIFECYCLE =====

func (s *examService) Start(ctx context.Context, req *StartExamRequest, userID string) (*models.ExamSession, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	course, err := s.repo.Course().GetByID(ctx, req.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	active, err := s.repo.Exam().GetActiveByUser(ctx, userID, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}
	if active != nil {
		if s.now().Before(active.EndsAt) {
			s.logger.Info("Resuming active exam session", "session_id", active.ID, "user_id", userID)
			return s.repo.Exam().GetByIDWithQuestions(ctx, active.ID)
		}
		// Stale session past its deadline; finalize it before starting anew.
		if _, err := s.finalize(ctx, active.ID, userID, models.SessionTimedOut, models.EndReasonTimeout); err != nil &&
			!errors.Is(err, ErrSessionAlreadySubmitted) {
			return nil, fmt.Errorf("failed to close expired session: %w", err)
		}
	}

	limit := course.MaxQuestions
	if limit <= 0 {
		limit = DefaultMaxQuestions
	}
	questions, err := s.repo.Question().GetRandomByCourse(ctx, req.CourseID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to draw questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrCourseEmpty
	}
	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	startedAt := s.now()
	session := &models.ExamSession{
		CourseID:  req.CourseID,
		UserID:    userID,
		Status:    models.SessionInProgress,
		StartedAt: startedAt,
		EndsAt:    startedAt.Add(time.Duration(course.Duration) * time.Minute),
	}
	for i, question := range questions {
		session.Questions = append(session.Questions, models.ExamQuestion{
			QuestionID: question.ID,
			Position:   i + 1,
			Question:   question,
		})
	}

	err = s.repo.WithTransaction(ctx, func(repo repositories.Repository) error {
		return repo.Exam().Create(ctx, session)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("Exam session started",
		"session_id", session.ID,
		"course_id", req.CourseID,
		"user_id", userID,
		"question_count", len(session.Questions))

	s.publishEvent(ctx, events.EventExamStarted, events.ExamStartedEvent{
		SessionID:     session.ID,
		CourseID:      course.ID,
		CourseName:    course.Name,
		UserID:        userID,
		QuestionCount: len(session.Questions),
		StartedAt:     session.StartedAt,
		EndsAt:        session.EndsAt,
	})

	return session, nil
}

func (s *examService) GetSession(ctx context.Context, sessionID uint, userID string, isAdmin bool) (*models.ExamSession, error) {
	session, err := s.repo.Exam().GetByIDWithQuestions(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !isAdmin && session.UserID != userID {
		return nil, ErrSessionAccessDenied
	}
	return session, nil
}

func (s *examService) SaveAnswer(ctx context.Context, sessionID uint, req *SaveAnswerRequest, userID string) error {
	if err := s.validator.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	session, err := s.repo.Exam().GetByIDWithQuestions(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != userID {
		return ErrSessionAccessDenied
	}
	if session.Status != models.SessionInProgress {
		return ErrSessionNotActive
	}
	if s.now().After(session.EndsAt) {
		return ErrSessionExpired
	}

	var examQuestion *models.ExamQuestion
	for i := range session.Questions {
		if session.Questions[i].QuestionID == req.QuestionID {
			examQuestion = &session.Questions[i]
			break
		}
	}
	if examQuestion == nil {
		return ErrQuestionNotInSession
	}

	examQuestion.UserAnswer = req.Answer
	if err := s.repo.Exam().SaveAnswer(ctx, examQuestion); err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}

	s.logger.Debug("Answer saved",
		"session_id", sessionID,
		"question_id", req.QuestionID,
		"user_id", userID)
	return nil
}

// ===== FINALIZATION =====

func (s *examService) Submit(ctx context.Context, sessionID uint, userID string) (*ExamResult, error) {
	started := time.Now()
	result, err := s.submit(ctx, sessionID, userID)
	s.opLog.LogOperation(ctx, "submit", userID, sessionID, "exam_session", time.Since(started), err)
	return result, err
}

func (s *examService) submit(ctx context.Context, sessionID uint, userID string) (*ExamResult, error) {
	session, err := s.repo.Exam().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != userID {
		return nil, ErrSessionAccessDenied
	}

	reason := models.EndReasonManual
	status := models.SessionSubmitted
	if s.now().After(session.EndsAt) {
		reason = models.EndReasonTimeout
		status = models.SessionTimedOut
	}

	return s.finalize(ctx, sessionID, userID, status, reason)
}

// finalize grades a session and flips it to a terminal status. The
// conditional status update in MarkSubmitted is the only idempotency
// guard: whoever loses the race gets ErrSessionAlreadySubmitted, and
// grading only ever runs for the winner.
func (s *examService) finalize(ctx context.Context, sessionID uint, userID string, status models.SessionStatus, reason models.SessionEndReason) (*ExamResult, error) {
	flipped, err := s.repo.Exam().MarkSubmitted(ctx, sessionID, status, reason, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to finalize session: %w", err)
	}
	if !flipped {
		return nil, ErrSessionAlreadySubmitted
	}

	session, err := s.repo.Exam().GetByIDWithQuestions(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload session: %w", err)
	}

	questions := make([]*models.Question, 0, len(session.Questions))
	answers := make(map[uint][]string, len(session.Questions))
	for _, eq := range session.Questions {
		if eq.Question == nil {
			continue
		}
		questions = append(questions, eq.Question)
		answers[eq.QuestionID] = eq.UserAnswer
	}

	score := grading.ScoreSession(questions, answers)

	results := make([]models.ExamQuestion, 0, len(score.PerQuestion))
	for _, pq := range score.PerQuestion {
		results = append(results, models.ExamQuestion{
			QuestionID: pq.QuestionID,
			UserAnswer: pq.UserAnswer,
			IsCorrect:  pq.IsCorrect,
		})
	}
	if err := s.repo.Exam().UpdateResults(ctx, sessionID, results, score.Percentage); err != nil {
		return nil, fmt.Errorf("failed to store results: %w", err)
	}

	session.Score = &score.Percentage
	session.Status = status

	s.logger.Info("Exam session finalized",
		"session_id", sessionID,
		"user_id", userID,
		"status", status,
		"score", score.Percentage,
		"correct", score.CorrectCount,
		"ungraded", score.UngradedCount)

	eventType := events.EventExamSubmitted
	if status == models.SessionTimedOut {
		eventType = events.EventExamTimedOut
	}
	s.publishEvent(ctx, eventType, events.ExamSubmittedEvent{
		SessionID:   sessionID,
		CourseID:    session.CourseID,
		UserID:      session.UserID,
		Score:       score.Percentage,
		EndReason:   string(reason),
		SubmittedAt: s.now(),
	})

	result := s.buildResult(session, score)
	if err := s.cache.Set(ctx, resultCacheKey(sessionID), result, resultCacheTTL); err != nil {
		s.logger.Warn("Failed to cache exam result", "session_id", sessionID, "error", err)
	}

	return result, nil
}

func (s *examService) GetResult(ctx context.Context, sessionID uint, userID string, isAdmin bool) (*ExamResult, error) {
	var cached ExamResult
	if err := s.cache.Get(ctx, resultCacheKey(sessionID), &cached); err == nil {
		session, err := s.repo.Exam().GetByID(ctx, sessionID)
		if err == nil && (isAdmin || session.UserID == userID) {
			return &cached, nil
		}
	}

	session, err := s.GetSession(ctx, sessionID, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionInProgress {
		return nil, ErrSessionNotActive
	}

	// Recompute from stored per-question results; the evaluator is
	// deterministic so this matches what finalization persisted.
	questions := make([]*models.Question, 0, len(session.Questions))
	answers := make(map[uint][]string, len(session.Questions))
	for _, eq := range session.Questions {
		if eq.Question == nil {
			continue
		}
		questions = append(questions, eq.Question)
		answers[eq.QuestionID] = eq.UserAnswer
	}
	score := grading.ScoreSession(questions, answers)

	result := s.buildResult(session, score)
	if err := s.cache.Set(ctx, resultCacheKey(sessionID), result, resultCacheTTL); err != nil {
		s.logger.Warn("Failed to cache exam result", "session_id", sessionID, "error", err)
	}
	return result, nil
}

func (s *examService) History(ctx context.Context, userID string, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	filters.UserID = &userID
	return s.repo.Exam().List(ctx, filters)
}

// HandleTimeouts finalizes every in-progress session past its deadline.
// Safe to run concurrently with user submits; the status flip decides
// who wins each session.
func (s *examService) HandleTimeouts(ctx context.Context) (int, error) {
	expired, err := s.repo.Exam().ListExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired sessions: %w", err)
	}

	closed := 0
	for _, session := range expired {
		if _, err := s.finalize(ctx, session.ID, session.UserID, models.SessionTimedOut, models.EndReasonTimeout); err != nil {
			if errors.Is(err, ErrSessionAlreadySubmitted) {
				continue
			}
			s.logger.Error("Failed to time out session", "session_id", session.ID, "error", err)
			continue
		}
		closed++
	}

	if closed > 0 {
		s.logger.Info("Timed out expired sessions", "count", closed)
	}
	return closed, nil
}

func (s *examService) buildResult(session *models.ExamSession, score grading.SessionScore) *ExamResult {
	result := &ExamResult{
		SessionID:     session.ID,
		CourseID:      session.CourseID,
		Status:        session.Status,
		EndReason:     session.EndReason,
		Score:         score.Percentage,
		CorrectCount:  score.CorrectCount,
		UngradedCount: score.UngradedCount,
		TotalCount:    len(score.PerQuestion),
		StartedAt:     session.StartedAt,
		EndedAt:       session.EndedAt,
	}

	byID := make(map[uint]grading.QuestionResult, len(score.PerQuestion))
	for _, pq := range score.PerQuestion {
		byID[pq.QuestionID] = pq
	}

	for _, eq := range session.Questions {
		if eq.Question == nil {
			continue
		}
		pq := byID[eq.QuestionID]
		result.Questions = append(result.Questions, ExamResultQuestion{
			QuestionID:    eq.QuestionID,
			Number:        eq.Question.Number,
			Prompt:        eq.Question.Prompt,
			Options:       eq.Question.Options,
			SubQuestions:  eq.Question.SubQuestions,
			UserAnswer:    pq.UserAnswer,
			CorrectAnswer: eq.Question.CorrectAnswer,
			IsCorrect:     pq.IsCorrect,
			Explanation:   eq.Question.Explanation,
		})
	}
	return result
}

func (s *examService) publishEvent(ctx context.Context, eventType events.EventType, data interface{}) {
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}

func resultCacheKey(sessionID uint) string {
	return fmt.Sprintf("exam:result:%d", sessionID)
}
