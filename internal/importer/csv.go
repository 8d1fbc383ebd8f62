package importer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/examstack/exam-service/internal/models"
)

// Grammar B: CSV with a fixed header contract. Row one names the columns;
// the required ones must be present by exact name or the whole import is
// rejected. A wrong header means the user picked the wrong file, and a
// partial parse would silently drop every row anyway.

const (
	colQuestion      = "Question"
	colQuestionText  = "Question Text"
	colOptions       = "Options"
	colCorrectAnswer = "Correct Answer"
	colExplanation   = "Explanation"
	colQuestionType  = "Question Type"
	colSubQuestions  = "Sub Questions"
)

var requiredColumns = []string{colQuestion, colQuestionText, colOptions, colCorrectAnswer, colExplanation}

// ErrMissingColumns is the fatal header-contract failure.
type ErrMissingColumns struct {
	Columns []string
}

func (e *ErrMissingColumns) Error() string {
	return fmt.Sprintf("CSV header is missing required columns: %s", strings.Join(e.Columns, ", "))
}

var (
	answerConnectorRe = regexp.MustCompile(`(?i)\s+(?:and|&)\s+`)
	answerSpaceRe     = regexp.MustCompile(`\s+`)
)

// ParseCSV parses CSV text through the hand-rolled reader, then runs every
// data row through the shared row pipeline.
func ParseCSV(content string) (*Result, error) {
	records := readRecords(content)
	return ParseRecords(records)
}

// ParseRecords parses pre-split rows (CSV or spreadsheet) where the first
// row is the header. It returns an error only for a broken header; bad
// rows are skipped with warnings.
func ParseRecords(records [][]string) (*Result, error) {
	if len(records) == 0 {
		return nil, &ErrMissingColumns{Columns: requiredColumns}
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &ErrMissingColumns{Columns: missing}
	}

	result := &Result{}
	for i, record := range records[1:] {
		cell := func(name string) string {
			idx, ok := header[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		if isBlankRow(cell) {
			continue
		}
		result.Total++

		question, warning := parseRow(cell, i+1)
		if warning != nil {
			warning.Row = i + 2 // 1-based file row, header included
			result.addWarning(*warning)
			continue
		}
		result.Questions = append(result.Questions, question)
	}

	return result, nil
}

func isBlankRow(cell func(string) string) bool {
	for _, col := range []string{colQuestion, colQuestionText, colOptions, colCorrectAnswer, colExplanation, colQuestionType, colSubQuestions} {
		if cell(col) != "" {
			return false
		}
	}
	return true
}

// parseRow converts one data row into a question record. position is the
// 1-based data-row index used as the fallback number.
func parseRow(cell func(string) string, position int) (*models.Question, *models.ImportValidationError) {
	number, err := strconv.Atoi(cell(colQuestion))
	if err != nil || number <= 0 {
		number = position
	}

	var optionWarning *models.ImportValidationError
	options, err := parseOptionsCell(cell(colOptions))
	if err != nil {
		// Bad JSON in one cell must not abort the batch; the row is
		// rejected below by the completeness check instead.
		optionWarning = &models.ImportValidationError{
			Number:  number,
			Column:  colOptions,
			Message: "options cell is not a valid JSON object: " + err.Error(),
			Value:   cell(colOptions),
		}
		options = nil
	}

	subQuestions := parseSubQuestionsCell(cell(colSubQuestions))

	rawAnswer := cell(colCorrectAnswer)
	questionType, answers := resolveRowType(cell(colQuestionType), rawAnswer, subQuestions)

	if w := checkRowComplete(cell(colQuestionText), options, answers, subQuestions, questionType, number); w != nil {
		if optionWarning != nil {
			return nil, optionWarning
		}
		return nil, w
	}

	return &models.Question{
		Number:           number,
		Prompt:           cell(colQuestionText),
		Options:          options,
		CorrectAnswer:    answers,
		SubQuestions:     subQuestions,
		Explanation:      cell(colExplanation),
		Type:             questionType,
		IsMultipleChoice: len(answers) > 1,
	}, nil
}

func checkRowComplete(text string, options []models.Option, answers, subQuestions []string, questionType models.QuestionType, number int) *models.ImportValidationError {
	var reason string
	switch {
	case text == "":
		reason = "question text is blank"
	case len(options) == 0:
		reason = "no options"
	case len(answers) == 0:
		reason = "no correct answer"
	case questionType == models.QuestionMatching && (len(subQuestions) == 0 || len(answers) != len(subQuestions)):
		reason = fmt.Sprintf("matching question needs one answer per sub-question (got %d answers, %d sub-questions)",
			len(answers), len(subQuestions))
	default:
		return nil
	}
	return &models.ImportValidationError{Number: number, Message: reason}
}

// parseOptionsCell decodes the options cell as a JSON object while keeping
// the document's key order. Labels like "AA" must not be re-sorted into
// lexicographic order, so a plain map is out.
func parseOptionsCell(cellValue string) ([]models.Option, error) {
	if cellValue == "" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(cellValue))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var options []models.Option
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		label, _ := keyTok.(string)

		var text string
		if err := dec.Decode(&text); err != nil {
			return nil, fmt.Errorf("option %q: %w", label, err)
		}
		options = append(options, models.Option{
			Label: strings.TrimSpace(label),
			Text:  strings.TrimSpace(text),
		})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return options, nil
}

// parseSubQuestionsCell reads the sub-questions cell: a JSON array when it
// starts with '[', otherwise newline- or pipe-separated text.
func parseSubQuestionsCell(cellValue string) []string {
	if cellValue == "" {
		return nil
	}

	if strings.HasPrefix(cellValue, "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(cellValue), &parsed); err == nil {
			var subs []string
			for _, s := range parsed {
				if s = strings.TrimSpace(s); s != "" {
					subs = append(subs, s)
				}
			}
			return subs
		}
		// fall through to separator splitting on malformed JSON
	}

	var subs []string
	for _, part := range strings.FieldsFunc(cellValue, func(r rune) bool { return r == '\n' || r == '|' }) {
		if part = strings.TrimSpace(part); part != "" {
			subs = append(subs, part)
		}
	}
	return subs
}

// resolveRowType runs the row's type inference and answer splitting
// together, since order questions accept extra delimiters:
//
//	explicit Question Type -> sub-questions -> arrow in the raw answer
//	-> answer count
func resolveRowType(typeCell, rawAnswer string, subQuestions []string) (models.QuestionType, []string) {
	explicit, hasExplicit := models.NormalizeQuestionType(typeCell)

	orderInferred := explicit == models.QuestionOrder ||
		(!hasExplicit && len(subQuestions) == 0 && containsArrow(rawAnswer))

	answers := splitAnswerCell(rawAnswer, orderInferred)

	switch {
	case hasExplicit:
		return explicit, answers
	case len(subQuestions) > 0:
		return models.QuestionMatching, answers
	case containsArrow(rawAnswer):
		return models.QuestionOrder, answers
	case len(answers) > 1:
		return models.QuestionMultiple, answers
	default:
		return models.QuestionSingle, answers
	}
}

func containsArrow(raw string) bool {
	return strings.Contains(raw, "->") || strings.Contains(raw, ">")
}

// splitAnswerCell normalizes "and"/"&" connectors to commas, collapses
// whitespace and splits. Order questions additionally accept "->", ">" and
// the usual comma/slash, so either arrow or comma notation works.
func splitAnswerCell(raw string, order bool) []string {
	normalized := answerConnectorRe.ReplaceAllString(strings.TrimSpace(raw), ",")
	normalized = answerSpaceRe.ReplaceAllString(normalized, " ")
	if normalized == "" {
		return nil
	}

	if order {
		normalized = strings.ReplaceAll(normalized, "->", ">")
	}

	var answers []string
	for _, part := range strings.FieldsFunc(normalized, func(r rune) bool {
		if order && r == '>' {
			return true
		}
		return r == ',' || r == '/'
	}) {
		if part = strings.TrimSpace(part); part != "" {
			answers = append(answers, part)
		}
	}
	return answers
}
