// Package grading holds the answer-evaluation and scoring rules used both
// during live exams and when re-rendering historical results, so the two
// can never drift apart.
package grading

import (
	"sort"
	"strings"

	"github.com/examstack/exam-service/internal/models"
)

// Evaluate judges a submitted answer against a question's correct answer.
// It returns nil when the question cannot be graded (empty correct answer,
// a data-quality problem upstream of grading). That is distinct from false,
// so broken questions are surfaced instead of silently marked wrong.
//
// Comparison rules by resolved type:
//   - order, matching: positional equality
//   - single, multiple: set equality
func Evaluate(question *models.Question, userAnswer []string) *bool {
	if len(question.CorrectAnswer) == 0 {
		return nil
	}
	if len(userAnswer) == 0 || len(userAnswer) != len(question.CorrectAnswer) {
		return boolPtr(false)
	}

	switch question.ResolvedType() {
	case models.QuestionOrder, models.QuestionMatching:
		for i, want := range question.CorrectAnswer {
			if userAnswer[i] != want {
				return boolPtr(false)
			}
		}
	default:
		given := make(map[string]struct{}, len(userAnswer))
		for _, label := range userAnswer {
			given[label] = struct{}{}
		}
		for _, want := range question.CorrectAnswer {
			if _, ok := given[want]; !ok {
				return boolPtr(false)
			}
		}
	}
	return boolPtr(true)
}

// FormatAnswer renders a label sequence for display: joined by " -> " when
// position carries meaning (order questions), otherwise sorted and joined
// by ", ". Presentation only; Evaluate never depends on this.
func FormatAnswer(question *models.Question, labels []string) string {
	if question.ResolvedType() == models.QuestionOrder {
		return strings.Join(labels, " -> ")
	}
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

func boolPtr(b bool) *bool {
	return &b
}
