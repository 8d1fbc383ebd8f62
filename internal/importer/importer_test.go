package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_DispatchesByExtension(t *testing.T) {
	markdown := "## Question 1\n**Question** p\n**Options**\nA. x\n**Correct Answer** A\n"
	csv := "Question,Question Text,Options,Correct Answer,Explanation\n" +
		`1,p,"{""A"": ""x""}",A,e` + "\n"

	for _, filename := range []string{"questions.txt", "questions.md", "QUESTIONS.TXT"} {
		result, err := Parse(markdown, filename)
		require.NoError(t, err, filename)
		assert.Len(t, result.Questions, 1, filename)
	}

	result, err := Parse(csv, "questions.csv")
	require.NoError(t, err)
	assert.Len(t, result.Questions, 1)
}

func TestParse_UnsupportedExtension(t *testing.T) {
	_, err := Parse("anything", "questions.pdf")

	var unsupported *ErrUnsupportedFormat
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, ".pdf", unsupported.Extension)
}
