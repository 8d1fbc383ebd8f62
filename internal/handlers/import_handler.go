package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// 10 MiB ought to be enough for any question file.
const maxImportFileSize = 10 << 20

// ImportExportHandler handles question import and export requests
type ImportExportHandler struct {
	BaseHandler
	service services.ImportExportService
}

func NewImportExportHandler(service services.ImportExportService, logger utils.Logger) *ImportExportHandler {
	return &ImportExportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ImportQuestions imports questions from an uploaded file
// @Summary Import questions
// @Description Parse a .txt, .md, .csv or .xlsx file and add its questions to the bank. Bad rows are skipped and reported.
// @Tags import-export
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Question file"
// @Param course_id formData int false "Target course"
// @Success 200 {object} models.ImportSummary
// @Failure 400 {object} ErrorResponse
// @Router /import [post]
func (h *ImportExportHandler) ImportQuestions(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}
	if fileHeader.Size > maxImportFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: "File too large",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Cannot read uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	var courseID *uint
	if raw := c.PostForm("course_id"); raw != "" {
		var id uint
		if _, err := fmt.Sscanf(raw, "%d", &id); err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid course_id parameter",
			})
			return
		}
		courseID = &id
	}

	h.LogRequest(c, "Importing questions",
		"file_name", fileHeader.Filename,
		"file_size", fileHeader.Size,
	)

	summary, err := h.service.ImportQuestions(c.Request.Context(), &services.ImportRequest{
		Reader:   file,
		FileName: fileHeader.Filename,
		FileSize: fileHeader.Size,
		UserID:   userID,
		CourseID: courseID,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetImportJob returns the status of an import job
// @Summary Get import job
// @Tags import-export
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} models.ImportJob
// @Failure 404 {object} ErrorResponse
// @Router /import/jobs/{id} [get]
func (h *ImportExportHandler) GetImportJob(c *gin.Context) {
	userID, isAdmin, ok := h.currentUser(c)
	if !ok {
		return
	}
	jobID := c.Param("id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid id parameter"})
		return
	}

	job, err := h.service.GetImportJob(c.Request.Context(), jobID, userID, isAdmin)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListImportJobs lists the caller's import jobs
// @Summary List import jobs
// @Tags import-export
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ListResponse
// @Router /import/jobs [get]
func (h *ImportExportHandler) ListImportJobs(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	jobs, total, err := h.service.ListImportJobs(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: jobs, Total: total})
}

// ExportQuestionsCSV streams the question bank as a CSV file
// @Summary Export questions as CSV
// @Tags import-export
// @Produce text/csv
// @Param course_id query int false "Restrict to course"
// @Success 200 {file} file
// @Router /export/questions.csv [get]
func (h *ImportExportHandler) ExportQuestionsCSV(c *gin.Context) {
	userID, isAdmin, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID, ok := parseOptionalUintQuery(c, "course_id")
	if !ok {
		return
	}

	data, err := h.service.ExportQuestionsCSV(c.Request.Context(), courseID, userID, isAdmin)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	fileName := fmt.Sprintf("questions_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportQuestionsExcel streams the question bank as an xlsx workbook
// @Summary Export questions as Excel
// @Tags import-export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param course_id query int false "Restrict to course"
// @Success 200 {file} file
// @Router /export/questions.xlsx [get]
func (h *ImportExportHandler) ExportQuestionsExcel(c *gin.Context) {
	userID, isAdmin, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID, ok := parseOptionalUintQuery(c, "course_id")
	if !ok {
		return
	}

	data, err := h.service.ExportQuestionsExcel(c.Request.Context(), courseID, userID, isAdmin)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	fileName := fmt.Sprintf("questions_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportResultsExcel streams all finished results of a course as xlsx
// @Summary Export exam results as Excel
// @Tags import-export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Course ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Router /export/courses/{id}/results.xlsx [get]
func (h *ImportExportHandler) ExportResultsExcel(c *gin.Context) {
	userID, isAdmin, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	data, err := h.service.ExportResultsExcel(c.Request.Context(), id, userID, isAdmin)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	fileName := fmt.Sprintf("results_course_%d_%s.xlsx", id, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
