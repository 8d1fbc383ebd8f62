package grading

import (
	"testing"

	"github.com/examstack/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(qt models.QuestionType, correct ...string) *models.Question {
	return &models.Question{Type: qt, CorrectAnswer: correct}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		question *models.Question
		answer   []string
		want     *bool
	}{
		// set semantics
		{
			name:     "single correct",
			question: question(models.QuestionSingle, "B"),
			answer:   []string{"B"},
			want:     ptr(true),
		},
		{
			name:     "single wrong",
			question: question(models.QuestionSingle, "B"),
			answer:   []string{"C"},
			want:     ptr(false),
		},
		{
			name:     "multiple order-insensitive",
			question: question(models.QuestionMultiple, "A", "C"),
			answer:   []string{"C", "A"},
			want:     ptr(true),
		},
		{
			name:     "multiple missing one",
			question: question(models.QuestionMultiple, "A", "C"),
			answer:   []string{"A"},
			want:     ptr(false),
		},
		{
			name:     "multiple extra one",
			question: question(models.QuestionMultiple, "A", "C"),
			answer:   []string{"A", "C", "D"},
			want:     ptr(false),
		},

		// positional semantics
		{
			name:     "order exact sequence",
			question: question(models.QuestionOrder, "B", "A", "C"),
			answer:   []string{"B", "A", "C"},
			want:     ptr(true),
		},
		{
			name:     "order same set wrong sequence",
			question: question(models.QuestionOrder, "B", "A", "C"),
			answer:   []string{"A", "B", "C"},
			want:     ptr(false),
		},
		{
			name:     "matching positional",
			question: question(models.QuestionMatching, "C", "A"),
			answer:   []string{"C", "A"},
			want:     ptr(true),
		},
		{
			name:     "matching swapped pairs",
			question: question(models.QuestionMatching, "C", "A"),
			answer:   []string{"A", "C"},
			want:     ptr(false),
		},

		// shape and tri-state
		{
			name:     "no answer submitted",
			question: question(models.QuestionSingle, "B"),
			answer:   nil,
			want:     ptr(false),
		},
		{
			name:     "length mismatch short-circuits",
			question: question(models.QuestionOrder, "A", "B"),
			answer:   []string{"A"},
			want:     ptr(false),
		},
		{
			name:     "empty correct answer is ungradable",
			question: question(models.QuestionSingle),
			answer:   []string{"A"},
			want:     nil,
		},
		{
			name:     "ungradable even with no answer",
			question: question(models.QuestionMultiple),
			answer:   nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.question, tt.answer)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestEvaluate_LegacyFlagStillSetSemantics(t *testing.T) {
	q := &models.Question{IsMultipleChoice: true, CorrectAnswer: []string{"A", "B"}}

	got := Evaluate(q, []string{"B", "A"})
	require.NotNil(t, got)
	assert.True(t, *got)
}

func TestFormatAnswer(t *testing.T) {
	order := question(models.QuestionOrder, "B", "A")
	assert.Equal(t, "B -> A", FormatAnswer(order, []string{"B", "A"}))

	multiple := question(models.QuestionMultiple, "A", "C")
	assert.Equal(t, "A, C", FormatAnswer(multiple, []string{"C", "A"}))
}

func ptr(b bool) *bool { return &b }
