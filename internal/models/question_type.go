package models

import (
	"regexp"
	"strings"
)

type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionOrder    QuestionType = "order"
	QuestionMatching QuestionType = "matching"
)

// questionTypeAliases maps normalized type labels to canonical kinds.
// Stored data carries every spelling users and older exports produced.
var questionTypeAliases = map[string]QuestionType{
	"single":          QuestionSingle,
	"single choice":   QuestionSingle,
	"singlechoice":    QuestionSingle,
	"multiple":        QuestionMultiple,
	"multi":           QuestionMultiple,
	"multiple choice": QuestionMultiple,
	"multiplechoice":  QuestionMultiple,
	"order":           QuestionOrder,
	"ordered":         QuestionOrder,
	"ordering":        QuestionOrder,
	"sequence":        QuestionOrder,
	"sequencing":      QuestionOrder,
	"match":           QuestionMatching,
	"matching":        QuestionMatching,
	"mapping":         QuestionMatching,
	"match up":        QuestionMatching,
}

var (
	typeSeparatorRe  = regexp.MustCompile(`[_-]+`)
	typeWhitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeQuestionType maps a free-text type label to a canonical kind.
// The label is lowercased, underscores and hyphens collapse to spaces and
// repeated whitespace collapses before the alias lookup.
func NormalizeQuestionType(value string) (QuestionType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "", false
	}
	normalized = typeSeparatorRe.ReplaceAllString(normalized, " ")
	normalized = typeWhitespaceRe.ReplaceAllString(normalized, " ")
	qt, ok := questionTypeAliases[strings.TrimSpace(normalized)]
	return qt, ok
}

// ResolveQuestionType resolves the canonical kind for a question record,
// first match wins:
//
//  1. explicit type label through the alias table
//  2. sub-questions present -> matching
//  3. legacy multiple-choice flag -> multiple
//  4. more than one correct answer -> multiple
//  5. single
//
// The same chain is used by the importer, the grader and display code so
// that legacy rows (flag only, no explicit type) and newer explicit-type
// rows resolve identically everywhere.
func ResolveQuestionType(explicit string, multipleChoice bool, correctAnswer, subQuestions []string) QuestionType {
	if qt, ok := NormalizeQuestionType(explicit); ok {
		return qt
	}
	if len(subQuestions) > 0 {
		return QuestionMatching
	}
	if multipleChoice {
		return QuestionMultiple
	}
	if len(correctAnswer) > 1 {
		return QuestionMultiple
	}
	return QuestionSingle
}

// ResolvedType resolves the canonical kind for this question.
func (q *Question) ResolvedType() QuestionType {
	return ResolveQuestionType(string(q.Type), q.IsMultipleChoice, q.CorrectAnswer, q.SubQuestions)
}
