package services

import (
	"errors"
	"fmt"

	apperrors "github.com/examstack/exam-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Course specific errors
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseAccessDenied = errors.New("access denied to course")
	ErrCourseNotDeletable = errors.New("course cannot be deleted - has exam sessions")
	ErrCourseEmpty        = errors.New("course has no questions")

	// Question specific errors
	ErrQuestionNotFound     = errors.New("question not found")
	ErrQuestionAccessDenied = errors.New("access denied to question")
	ErrQuestionInvalidType  = errors.New("invalid question type")

	// Exam session specific errors
	ErrSessionNotFound         = errors.New("exam session not found")
	ErrSessionAccessDenied     = errors.New("access denied to exam session")
	ErrSessionNotActive        = errors.New("exam session is not active")
	ErrSessionAlreadySubmitted = errors.New("exam session already submitted")
	ErrSessionAlreadyActive    = errors.New("an exam session for this course is already in progress")
	ErrSessionExpired          = errors.New("exam session time has expired")
	ErrQuestionNotInSession    = errors.New("question is not part of this exam session")

	// Import specific errors
	ErrImportJobNotFound = errors.New("import job not found")
	ErrImportEmptyFile   = errors.New("import file is empty")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrImportJobNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrCourseAccessDenied) ||
		errors.Is(err, ErrQuestionAccessDenied) ||
		errors.Is(err, ErrSessionAccessDenied) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrCourseNotDeletable) ||
		errors.Is(err, ErrSessionAlreadySubmitted) ||
		errors.Is(err, ErrSessionAlreadyActive)
}
