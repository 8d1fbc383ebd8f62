package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuestionType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected QuestionType
		ok       bool
	}{
		{"canonical single", "single", QuestionSingle, true},
		{"canonical multiple", "multiple", QuestionMultiple, true},
		{"multi shorthand", "multi", QuestionMultiple, true},
		{"hyphenated", "multiple-choice", QuestionMultiple, true},
		{"underscored", "multiple_choice", QuestionMultiple, true},
		{"compact", "multiplechoice", QuestionMultiple, true},
		{"single choice spaced", "Single Choice", QuestionSingle, true},
		{"ordering alias", "ordering", QuestionOrder, true},
		{"sequence alias", "SEQUENCE", QuestionOrder, true},
		{"match alias", "match", QuestionMatching, true},
		{"mapping alias", "mapping", QuestionMatching, true},
		{"match-up alias", "match-up", QuestionMatching, true},
		{"repeated whitespace", "  multiple   choice  ", QuestionMultiple, true},
		{"mixed separators", "multiple--__choice", QuestionMultiple, true},
		{"unknown label", "essay", "", false},
		{"empty", "", "", false},
		{"blank", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qt, ok := NormalizeQuestionType(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, qt)
		})
	}
}

func TestResolveQuestionType(t *testing.T) {
	tests := []struct {
		name           string
		explicit       string
		multipleChoice bool
		correctAnswer  []string
		subQuestions   []string
		expected       QuestionType
	}{
		{
			name:          "explicit type wins over shape",
			explicit:      "order",
			correctAnswer: []string{"A"},
			expected:      QuestionOrder,
		},
		{
			name:          "unknown explicit falls through to shape",
			explicit:      "true_false",
			correctAnswer: []string{"A", "B"},
			expected:      QuestionMultiple,
		},
		{
			name:          "sub-questions imply matching",
			correctAnswer: []string{"A", "B"},
			subQuestions:  []string{"Req1", "Req2"},
			expected:      QuestionMatching,
		},
		{
			name:           "legacy flag implies multiple",
			multipleChoice: true,
			correctAnswer:  []string{"A"},
			expected:       QuestionMultiple,
		},
		{
			name:          "multiple answers imply multiple",
			correctAnswer: []string{"A", "C"},
			expected:      QuestionMultiple,
		},
		{
			name:          "default single",
			correctAnswer: []string{"B"},
			expected:      QuestionSingle,
		},
		{
			name:     "empty record defaults single",
			expected: QuestionSingle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveQuestionType(tt.explicit, tt.multipleChoice, tt.correctAnswer, tt.subQuestions)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQuestionResolvedType(t *testing.T) {
	t.Run("legacy record with flag only", func(t *testing.T) {
		q := &Question{
			CorrectAnswer:    []string{"A", "C"},
			IsMultipleChoice: true,
		}
		assert.Equal(t, QuestionMultiple, q.ResolvedType())
	})

	t.Run("explicit type beats legacy flag", func(t *testing.T) {
		q := &Question{
			Type:             "sequence",
			IsMultipleChoice: true,
			CorrectAnswer:    []string{"B", "A", "C"},
		}
		assert.Equal(t, QuestionOrder, q.ResolvedType())
	})
}

func TestQuestionOptionHelpers(t *testing.T) {
	q := &Question{
		Options: []Option{
			{Label: "A", Text: "first"},
			{Label: "B", Text: ""},
		},
	}

	assert.Equal(t, "first", q.OptionText("A"))
	assert.Equal(t, "", q.OptionText("Z"))
	assert.True(t, q.HasOption("A"))
	assert.False(t, q.HasOption("B"), "blank option text does not count")
	assert.False(t, q.HasOption("Z"))
}
