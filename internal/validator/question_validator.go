package validator

import (
	"fmt"
	"regexp"

	"github.com/examstack/exam-service/internal/models"
)

var optionLabelRe = regexp.MustCompile(`^[A-Z]{1,2}$`)

// QuestionValidator checks the cross-field rules struct tags cannot
// express: label shape, answer references, per-type answer counts.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question record.
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.Prompt == "" {
		return fmt.Errorf("question text is required")
	}
	if len(question.Options) == 0 {
		return fmt.Errorf("must have at least 1 option")
	}

	labels := make(map[string]bool, len(question.Options))
	for _, option := range question.Options {
		if !optionLabelRe.MatchString(option.Label) {
			return fmt.Errorf("invalid option label %q", option.Label)
		}
		if option.Text == "" {
			return fmt.Errorf("option %s text cannot be empty", option.Label)
		}
		if labels[option.Label] {
			return fmt.Errorf("duplicate option label %q", option.Label)
		}
		labels[option.Label] = true
	}

	for _, answer := range question.CorrectAnswer {
		if !labels[answer] {
			return fmt.Errorf("correct answer %q does not reference an option", answer)
		}
	}

	return v.validateByType(question, labels)
}

func (v *QuestionValidator) validateByType(question *models.Question, labels map[string]bool) error {
	switch question.ResolvedType() {
	case models.QuestionSingle:
		if len(question.CorrectAnswer) > 1 {
			return fmt.Errorf("single choice question must have exactly one correct answer")
		}
	case models.QuestionMultiple:
		if len(question.CorrectAnswer) > len(labels) {
			return fmt.Errorf("more correct answers than options")
		}
	case models.QuestionOrder:
		if len(question.CorrectAnswer) < 2 {
			return fmt.Errorf("order question needs at least 2 answers")
		}
		seen := make(map[string]bool, len(question.CorrectAnswer))
		for _, answer := range question.CorrectAnswer {
			if seen[answer] {
				return fmt.Errorf("order question repeats answer %q", answer)
			}
			seen[answer] = true
		}
	case models.QuestionMatching:
		if len(question.SubQuestions) == 0 {
			return fmt.Errorf("matching question needs sub-questions")
		}
		if len(question.CorrectAnswer) != len(question.SubQuestions) {
			return fmt.Errorf("matching question needs one answer per sub-question (got %d answers, %d sub-questions)",
				len(question.CorrectAnswer), len(question.SubQuestions))
		}
		for i, sub := range question.SubQuestions {
			if sub == "" {
				return fmt.Errorf("sub-question %d is empty", i+1)
			}
		}
	}
	return nil
}

// ValidateBatch validates imported questions, reporting the first failure
// with its question number.
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}
	for _, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("question %d: %w", question.Number, err)
		}
	}
	return nil
}
