package grading

import (
	"math"

	"github.com/examstack/exam-service/internal/models"
)

// QuestionResult is the per-question correctness record persisted with an
// exam session. IsCorrect is nil when the question was ungradable.
type QuestionResult struct {
	QuestionID uint     `json:"question_id"`
	UserAnswer []string `json:"user_answer"`
	IsCorrect  *bool    `json:"is_correct"`
}

// SessionScore aggregates one exam session's results.
type SessionScore struct {
	PerQuestion   []QuestionResult `json:"per_question"`
	CorrectCount  int              `json:"correct_count"`
	UngradedCount int              `json:"ungraded_count"`
	Percentage    int              `json:"percentage"`
}

// ScoreSession evaluates every question of a session in presentation order
// against the submitted answers (missing answers default to empty) and
// computes the percentage score.
//
// Ungraded questions stay in the denominator and never count as correct;
// their per-question record keeps IsCorrect nil so review screens can show
// "cannot be graded" instead of a wrong mark.
func ScoreSession(questions []*models.Question, answers map[uint][]string) SessionScore {
	score := SessionScore{
		PerQuestion: make([]QuestionResult, 0, len(questions)),
	}

	for _, question := range questions {
		userAnswer := answers[question.ID]
		isCorrect := Evaluate(question, userAnswer)

		if isCorrect == nil {
			score.UngradedCount++
		} else if *isCorrect {
			score.CorrectCount++
		}

		score.PerQuestion = append(score.PerQuestion, QuestionResult{
			QuestionID: question.ID,
			UserAnswer: userAnswer,
			IsCorrect:  isCorrect,
		})
	}

	score.Percentage = Percentage(score.CorrectCount, len(questions))
	return score
}

// Percentage computes round-half-up of 100*correct/total, and 0 for an
// empty session.
func Percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(100*float64(correct)/float64(total) + 0.5))
}
