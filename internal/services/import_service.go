package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/grading"
	"github.com/examstack/exam-service/internal/importer"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

// ImportExportService moves questions in and out of the pool as files:
// Markdown/text blocks, CSV and Excel in; CSV and Excel out.
type ImportExportService interface {
	ImportQuestions(ctx context.Context, req *ImportRequest) (*models.ImportSummary, error)
	GetImportJob(ctx context.Context, jobID string, userID string, isAdmin bool) (*models.ImportJob, error)
	ListImportJobs(ctx context.Context, userID string, limit, offset int) ([]*models.ImportJob, int64, error)

	ExportQuestionsCSV(ctx context.Context, courseID *uint, userID string, isAdmin bool) ([]byte, error)
	ExportQuestionsExcel(ctx context.Context, courseID *uint, userID string, isAdmin bool) ([]byte, error)
	ExportResultsExcel(ctx context.Context, courseID uint, userID string, isAdmin bool) ([]byte, error)
}

type ImportRequest struct {
	Reader   io.Reader
	FileName string
	FileSize int64
	UserID   string
	CourseID *uint
}

type importExportService struct {
	repo      repositories.Repository
	publisher events.Publisher
	logger    *slog.Logger
	opLog     *ServiceLogger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		opLog:     NewServiceLogger(logger, "import_export"),
		validator: validator,
	}
}

// ===== IMPORT =====

func (s *importExportService) ImportQuestions(ctx context.Context, req *ImportRequest) (*models.ImportSummary, error) {
	data, err := io.ReadAll(req.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrImportEmptyFile
	}

	if req.CourseID != nil {
		if _, err := s.repo.Course().GetByID(ctx, *req.CourseID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
	}

	job := &models.ImportJob{
		ID:       watermill.NewUUID(),
		UserID:   req.UserID,
		CourseID: req.CourseID,
		FileName: req.FileName,
		FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(req.FileName)), "."),
		FileSize: req.FileSize,
		Status:   models.ImportProcessing,
	}
	now := time.Now()
	job.StartedAt = &now
	if err := s.repo.ImportJob().Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}

	summary, err := s.runImport(ctx, req, data)
	if err != nil {
		s.failJob(ctx, job, err)
		return nil, err
	}

	job.Status = models.ImportCompleted
	job.TotalBlocks = summary.TotalBlocks
	job.ImportedCount = summary.ImportedCount
	job.SkippedCount = summary.SkippedCount
	if len(summary.Errors) > 0 {
		if encoded, err := json.Marshal(summary.Errors); err == nil {
			job.Errors = datatypes.JSON(encoded)
		}
	}
	completed := time.Now()
	job.CompletedAt = &completed
	if err := s.repo.ImportJob().Update(ctx, job); err != nil {
		s.logger.Error("Failed to update import job", "job_id", job.ID, "error", err)
	}

	s.logger.Info("Import completed",
		"job_id", job.ID,
		"file", req.FileName,
		"total", summary.TotalBlocks,
		"imported", summary.ImportedCount,
		"skipped", summary.SkippedCount)

	s.publishEvent(ctx, events.EventImportCompleted, events.ImportCompletedEvent{
		JobID:         job.ID,
		UserID:        req.UserID,
		CourseID:      req.CourseID,
		FileName:      req.FileName,
		ImportedCount: summary.ImportedCount,
		SkippedCount:  summary.SkippedCount,
	})

	return summary, nil
}

func (s *importExportService) runImport(ctx context.Context, req *ImportRequest, data []byte) (*models.ImportSummary, error) {
	var result *importer.Result
	var err error

	if strings.EqualFold(filepath.Ext(req.FileName), ".xlsx") {
		result, err = s.parseExcel(data)
	} else {
		result, err = importer.Parse(string(data), req.FileName)
	}
	if err != nil {
		return nil, err
	}

	// Question-level rules the grammars cannot check; failures skip the
	// question like any other malformed entry.
	accepted := result.Questions[:0]
	for _, question := range result.Questions {
		if vErr := s.validator.Question().ValidateQuestion(question); vErr != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, models.ImportValidationError{
				Number:  question.Number,
				Message: vErr.Error(),
			})
			continue
		}
		question.CreatedBy = req.UserID
		question.CourseID = req.CourseID
		accepted = append(accepted, question)
	}
	result.Questions = accepted

	if len(result.Questions) > 0 {
		err = s.repo.WithTransaction(ctx, func(repo repositories.Repository) error {
			var existing []*models.Question
			if req.CourseID != nil {
				existing, err = repo.Question().GetByCourse(ctx, *req.CourseID)
			} else {
				createdBy := req.UserID
				existing, _, err = repo.Question().List(ctx, repositories.QuestionFilters{CreatedBy: &createdBy})
			}
			if err != nil {
				return fmt.Errorf("failed to load existing questions: %w", err)
			}

			importer.MergeNumbering(existing, result.Questions)
			return repo.Question().CreateBatch(ctx, result.Questions)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save questions: %w", err)
		}
	}

	return &models.ImportSummary{
		TotalBlocks:   result.Total,
		ImportedCount: len(result.Questions),
		SkippedCount:  result.Skipped,
		Errors:        result.Warnings,
		Questions:     result.Questions,
	}, nil
}

// parseExcel extracts the first sheet as records and feeds them through
// the shared row pipeline, so Excel and CSV obey the same header
// contract.
func (s *importExportService) parseExcel(data []byte) (*importer.Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}

	return importer.ParseRecords(rows)
}

func (s *importExportService) failJob(ctx context.Context, job *models.ImportJob, cause error) {
	job.Status = models.ImportFailed
	completed := time.Now()
	job.CompletedAt = &completed
	if encoded, err := json.Marshal([]models.ImportValidationError{{Message: cause.Error()}}); err == nil {
		job.Errors = datatypes.JSON(encoded)
	}
	if err := s.repo.ImportJob().Update(ctx, job); err != nil {
		s.logger.Error("Failed to update import job", "job_id", job.ID, "error", err)
	}

	s.publishEvent(ctx, events.EventImportFailed, events.ImportFailedEvent{
		JobID:    job.ID,
		UserID:   job.UserID,
		FileName: job.FileName,
		Reason:   cause.Error(),
	})
}

func (s *importExportService) GetImportJob(ctx context.Context, jobID string, userID string, isAdmin bool) (*models.ImportJob, error) {
	job, err := s.repo.ImportJob().GetByID(ctx, jobID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrImportJobNotFound
		}
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	if !isAdmin && job.UserID != userID {
		return nil, ErrForbidden
	}
	return job, nil
}

func (s *importExportService) ListImportJobs(ctx context.Context, userID string, limit, offset int) ([]*models.ImportJob, int64, error) {
	return s.repo.ImportJob().ListByUser(ctx, userID, limit, offset)
}

// ===== EXPORT =====

var exportHeader = []string{"Question", "Question Text", "Options", "Correct Answer", "Explanation", "Question Type", "Sub Questions"}

func (s *importExportService) ExportQuestionsCSV(ctx context.Context, courseID *uint, userID string, isAdmin bool) ([]byte, error) {
	questions, err := s.questionsForExport(ctx, courseID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, question := range questions {
		if err := writer.Write(questionToRow(question)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *importExportService) ExportQuestionsExcel(ctx context.Context, courseID *uint, userID string, isAdmin bool) ([]byte, error) {
	questions, err := s.questionsForExport(ctx, courseID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Questions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}
	for rowIndex, question := range questions {
		for colIndex, value := range questionToRow(question) {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importExportService) ExportResultsExcel(ctx context.Context, courseID uint, userID string, isAdmin bool) ([]byte, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if !isAdmin && course.CreatedBy != userID {
		permErr := NewPermissionError(userID, courseID, "course", "export_results", "not the course owner")
		s.opLog.LogPermissionDenied(ctx, "export_results", permErr)
		return nil, permErr
	}

	sessions, _, err := s.repo.Exam().List(ctx, repositories.SessionFilters{CourseID: &courseID})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Session ID", "User ID", "Status", "Score", "Started At", "Ended At", "End Reason"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, session := range sessions {
		score := ""
		if session.Score != nil {
			score = strconv.Itoa(*session.Score)
		}
		endedAt := ""
		if session.EndedAt != nil {
			endedAt = session.EndedAt.Format(time.RFC3339)
		}
		endReason := ""
		if session.EndReason != nil {
			endReason = string(*session.EndReason)
		}
		row := []interface{}{
			session.ID,
			session.UserID,
			string(session.Status),
			score,
			session.StartedAt.Format(time.RFC3339),
			endedAt,
			endReason,
		}
		for colIndex, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importExportService) questionsForExport(ctx context.Context, courseID *uint, userID string, isAdmin bool) ([]*models.Question, error) {
	if courseID != nil {
		if _, err := s.repo.Course().GetByID(ctx, *courseID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
		return s.repo.Question().GetByCourse(ctx, *courseID)
	}

	filters := repositories.QuestionFilters{SortBy: "number"}
	if !isAdmin {
		filters.CreatedBy = &userID
	}
	questions, _, err := s.repo.Question().List(ctx, filters)
	return questions, err
}

// questionToRow renders one question the way the CSV grammar reads it
// back, so an export re-imports cleanly.
func questionToRow(question *models.Question) []string {
	// marshal via ordered pairs to keep document order
	var optionsJSON bytes.Buffer
	optionsJSON.WriteByte('{')
	for i, option := range question.Options {
		if i > 0 {
			optionsJSON.WriteString(", ")
		}
		key, _ := json.Marshal(option.Label)
		value, _ := json.Marshal(option.Text)
		optionsJSON.Write(key)
		optionsJSON.WriteString(": ")
		optionsJSON.Write(value)
	}
	optionsJSON.WriteByte('}')

	answer := grading.FormatAnswer(question, question.CorrectAnswer)
	if question.ResolvedType() == models.QuestionMatching {
		// matching answers are positional; never sort them
		answer = strings.Join(question.CorrectAnswer, ", ")
	}

	return []string{
		strconv.Itoa(question.Number),
		question.Prompt,
		optionsJSON.String(),
		answer,
		question.Explanation,
		string(question.ResolvedType()),
		strings.Join(question.SubQuestions, "|"),
	}
}

func (s *importExportService) publishEvent(ctx context.Context, eventType events.EventType, data interface{}) {
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}
