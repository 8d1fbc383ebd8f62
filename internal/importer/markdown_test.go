package importer

import (
	"testing"

	"github.com/examstack/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedBlock = `## Question 1

**Question**
Which planet is closest to the sun?

**Options**
A. Venus
B. Mercury
C. Mars
D. Earth

**Correct Answer**
B

**Explanation**
Mercury orbits at roughly 58 million km.

---
`

func TestParseMarkdown_WellFormedBlock(t *testing.T) {
	result := ParseMarkdown(wellFormedBlock)

	require.Len(t, result.Questions, 1)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, result.Skipped)

	q := result.Questions[0]
	assert.Equal(t, 1, q.Number)
	assert.Equal(t, "Which planet is closest to the sun?", q.Prompt)
	assert.Equal(t, []models.Option{
		{Label: "A", Text: "Venus"},
		{Label: "B", Text: "Mercury"},
		{Label: "C", Text: "Mars"},
		{Label: "D", Text: "Earth"},
	}, q.Options)
	assert.Equal(t, []string{"B"}, q.CorrectAnswer)
	assert.Equal(t, "Mercury orbits at roughly 58 million km.", q.Explanation)
	assert.False(t, q.IsMultipleChoice)
	assert.Equal(t, models.QuestionSingle, q.ResolvedType())
}

func TestParseMarkdown_MultiAnswerDetection(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		want    []string
		isMulti bool
	}{
		{"comma separated", "A, C", []string{"A", "C"}, true},
		{"and separated", "A and C", []string{"A", "C"}, true},
		{"mixed comma and and", "A, B and D", []string{"A", "B", "D"}, true},
		{"single answer untouched", "B", []string{"B"}, false},
		{"answer containing and without spaces stays whole", "Brandy", []string{"Brandy"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "## Question 1\n**Question** Pick.\n**Options**\nA. one\nB. two\nC. three\nD. four\n**Correct Answer** " +
				tt.answer + "\n**Explanation** none\n"
			result := ParseMarkdown(content)

			require.Len(t, result.Questions, 1)
			assert.Equal(t, tt.want, result.Questions[0].CorrectAnswer)
			assert.Equal(t, tt.isMulti, result.Questions[0].IsMultipleChoice)
		})
	}
}

func TestParseMarkdown_LabelOnSameLine(t *testing.T) {
	content := "## Question 7\n**Question** Inline prompt here\n**Options**\nA. yes\n**Correct Answer** A\n"
	result := ParseMarkdown(content)

	require.Len(t, result.Questions, 1)
	assert.Equal(t, 7, result.Questions[0].Number)
	assert.Equal(t, "Inline prompt here", result.Questions[0].Prompt)
}

func TestParseMarkdown_SkipsIncompleteBlocks(t *testing.T) {
	content := `## Question 1
**Question** Complete one.
**Options**
A. option
**Correct Answer** A

## Question 2
**Question** No options here.
**Correct Answer** A

## Question 3
**Options**
A. option
**Correct Answer** A

## Question 4
**Question** No answer given.
**Options**
A. option
`
	result := ParseMarkdown(content)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, 1, result.Questions[0].Number)

	require.Len(t, result.Warnings, 3)
	assert.Equal(t, 2, result.Warnings[0].Number)
	assert.Contains(t, result.Warnings[0].Message, "options")
	assert.Contains(t, result.Warnings[1].Message, "question text")
	assert.Contains(t, result.Warnings[2].Message, "correct answer")
}

func TestParseMarkdown_NumberFallsBackToPosition(t *testing.T) {
	// Header number overflows int parsing; block position takes over.
	content := "## Question 99999999999999999999\n**Question** p\n**Options**\nA. x\n**Correct Answer** A\n"
	result := ParseMarkdown(content)

	require.Len(t, result.Questions, 1)
	assert.Equal(t, 1, result.Questions[0].Number)
}

func TestParseMarkdown_CRLFAndSeparators(t *testing.T) {
	content := "## Question 1\r\n**Question** p\r\n**Options**\r\nA. x\r\nB. y\r\n**Correct Answer** A\r\n---\r\n## Question 2\r\n**Question** q\r\n**Options**\r\nA. z\r\n**Correct Answer** A\r\n"
	result := ParseMarkdown(content)

	require.Len(t, result.Questions, 2)
	assert.Equal(t, []string{"A"}, result.Questions[0].CorrectAnswer)
	assert.Equal(t, 2, result.Questions[1].Number)
}

func TestParseMarkdown_EmptyInput(t *testing.T) {
	result := ParseMarkdown("no question blocks at all")
	assert.Empty(t, result.Questions)
	assert.Equal(t, 0, result.Total)
}

func TestParseMarkdown_TwoLetterOptionLabels(t *testing.T) {
	content := "## Question 1\n**Question** p\n**Options**\nA. first\nAA. twenty-seventh\n**Correct Answer** AA\n"
	result := ParseMarkdown(content)

	require.Len(t, result.Questions, 1)
	assert.Equal(t, []models.Option{
		{Label: "A", Text: "first"},
		{Label: "AA", Text: "twenty-seventh"},
	}, result.Questions[0].Options)
}
