package importer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/examstack/exam-service/internal/models"
)

// Grammar A: tagged text blocks. Each block opens with "## Question <n>"
// and carries four bold-labelled sections:
//
//	**Question**        prompt text
//	**Options**         lines of "A. option text"
//	**Correct Answer**  one label, or several joined by comma / "and"
//	**Explanation**     rationale shown after grading
//
// Sections run until the next label, a "---" separator or end of block.
// This grammar predates explicit question types; multi-answer blocks only
// set the legacy multiple-choice flag.

var (
	blockHeaderRe = regexp.MustCompile(`(?m)^## Question (\d+)\b`)
	optionLineRe  = regexp.MustCompile(`^([A-Z]{1,2})\.\s+(.+)$`)
	answerAndRe   = regexp.MustCompile(`(?i)\s+and\s+`)
)

const (
	labelQuestion      = "**Question**"
	labelOptions       = "**Options**"
	labelCorrectAnswer = "**Correct Answer**"
	labelExplanation   = "**Explanation**"
)

// ParseMarkdown parses tagged-block text into question records. Blocks
// missing a prompt, options or a correct answer are skipped with a warning.
func ParseMarkdown(content string) *Result {
	result := &Result{}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	headers := blockHeaderRe.FindAllStringSubmatchIndex(content, -1)
	result.Total = len(headers)

	for i, header := range headers {
		end := len(content)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		block := content[header[0]:end]
		number, err := strconv.Atoi(content[header[2]:header[3]])
		if err != nil || number <= 0 {
			number = i + 1
		}

		question, warning := parseBlock(block, i+1, number)
		if warning != nil {
			result.addWarning(*warning)
			continue
		}
		result.Questions = append(result.Questions, question)
	}

	return result
}

// parseBlock extracts the labelled sections of one block and applies the
// completeness check.
func parseBlock(block string, index, number int) (*models.Question, *models.ImportValidationError) {
	sections := splitSections(block)

	prompt := strings.TrimSpace(sections[labelQuestion])
	explanation := strings.TrimSpace(sections[labelExplanation])
	options := parseOptionLines(sections[labelOptions])
	answers := splitAnswerList(sections[labelCorrectAnswer])

	var missing []string
	if prompt == "" {
		missing = append(missing, "question text")
	}
	if len(options) == 0 {
		missing = append(missing, "options")
	}
	if len(answers) == 0 {
		missing = append(missing, "correct answer")
	}
	if len(missing) > 0 {
		return nil, &models.ImportValidationError{
			Row:     index,
			Number:  number,
			Message: "missing " + strings.Join(missing, ", "),
		}
	}

	return &models.Question{
		Number:           number,
		Prompt:           prompt,
		Options:          options,
		CorrectAnswer:    answers,
		Explanation:      explanation,
		IsMultipleChoice: len(answers) > 1,
	}, nil
}

// splitSections walks the block line by line, switching sections on the
// bold labels and stopping a section at a "---" separator.
func splitSections(block string) map[string]string {
	labels := []string{labelQuestion, labelOptions, labelCorrectAnswer, labelExplanation}
	sections := make(map[string]string, len(labels))
	var current string
	var buf strings.Builder

	flush := func() {
		if current != "" {
			sections[current] += buf.String()
		}
		buf.Reset()
	}

	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "---" {
			flush()
			current = ""
			continue
		}

		matched := false
		for _, label := range labels {
			if rest, ok := cutLabel(trimmed, label); ok {
				flush()
				current = label
				if rest != "" {
					buf.WriteString(rest)
					buf.WriteString("\n")
				}
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if current != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	flush()

	return sections
}

// cutLabel strips a leading bold label (case-insensitive) from a line and
// returns the remainder of that line.
func cutLabel(line, label string) (string, bool) {
	if len(line) < len(label) || !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}
	return strings.TrimSpace(line[len(label):]), true
}

// parseOptionLines collects "A. text" lines in order of appearance.
func parseOptionLines(section string) []models.Option {
	var options []models.Option
	for _, line := range strings.Split(section, "\n") {
		m := optionLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		options = append(options, models.Option{Label: m[1], Text: strings.TrimSpace(m[2])})
	}
	return options
}

// splitAnswerList splits a correct-answer section: if it contains a comma
// or the word "and", "and" is normalized to a comma and the result split;
// otherwise the whole trimmed text is a single answer.
func splitAnswerList(section string) []string {
	raw := strings.TrimSpace(section)
	if raw == "" {
		return nil
	}
	if !strings.Contains(raw, ",") && !answerAndRe.MatchString(raw) {
		return []string{raw}
	}

	normalized := answerAndRe.ReplaceAllString(raw, ",")
	var answers []string
	for _, part := range strings.Split(normalized, ",") {
		if part = strings.TrimSpace(part); part != "" {
			answers = append(answers, part)
		}
	}
	return answers
}
