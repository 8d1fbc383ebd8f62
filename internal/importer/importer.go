// Package importer converts uploaded file text into validated question
// records. Two grammars are supported: tagged Markdown blocks (.txt/.md)
// and CSV with a fixed header contract (.csv). Malformed blocks and rows
// are skipped with a warning, never fatal; only a wrong file type or a
// broken header contract aborts an import.
package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/examstack/exam-service/internal/models"
)

// Result is the outcome of parsing one file: the accepted questions plus
// the skip count and per-entry warnings surfaced to the user.
type Result struct {
	Questions []*models.Question
	Total     int
	Skipped   int
	Warnings  []models.ImportValidationError
}

// ErrUnsupportedFormat is returned for file extensions no grammar covers.
type ErrUnsupportedFormat struct {
	Extension string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported import format %q (expected .txt, .md or .csv)", e.Extension)
}

// Parse selects a grammar from the file extension and parses content.
func Parse(content, filename string) (*Result, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt", ".md":
		return ParseMarkdown(content), nil
	case ".csv":
		return ParseCSV(content)
	default:
		return nil, &ErrUnsupportedFormat{Extension: ext}
	}
}

func (r *Result) addWarning(w models.ImportValidationError) {
	r.Skipped++
	r.Warnings = append(r.Warnings, w)
}
