package handlers

import (
	"net/http"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ExamHandler handles exam session HTTP requests
type ExamHandler struct {
	BaseHandler
	service services.ExamService
}

func NewExamHandler(service services.ExamService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// StartExam starts a new exam session for a course
// @Summary Start exam
// @Description Draw questions for the course and open a timed session. Returns the still-active session if one exists.
// @Tags exams
// @Accept json
// @Produce json
// @Param request body services.StartExamRequest true "Course to start"
// @Success 201 {object} models.ExamSession
// @Failure 422 {object} ErrorResponse
// @Router /exams [post]
func (h *ExamHandler) StartExam(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.StartExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting exam", "course_id", req.CourseID)

	session, err := h.service.Start(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession retrieves an exam session with its questions
// @Summary Get exam session
// @Tags exams
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} models.ExamSession
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id} [get]
func (h *ExamHandler) GetSession(c *gin.Context) {
	userID, isAdmin, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := h.service.GetSession(c.Request.Context(), id, userID, isAdmin)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SaveAnswer stores an answer for a question in an active session
// @Summary Save answer
// @Description Upsert the answer for one question. Only the session owner may answer, and only before the deadline.
// @Tags exams
// @Accept json
// @Param id path int true "Session ID"
// @Param answer body services.SaveAnswerRequest true "Answer payload"
// @Success 204
// @Failure 422 {object} ErrorResponse
// @Router /exams/{id}/answers [put]
func (h *ExamHandler) SaveAnswer(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SaveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	if err := h.service.SaveAnswer(c.Request.Context(), id, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SubmitExam finalizes a session and returns the graded result
// @Summary Submit exam
// @Description Grade all answered questions and close the session. Submitting twice returns a conflict.
// @Tags exams
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} services.ExamResult
// @Failure 409 {object} ErrorResponse
// @Router /exams/{id}/submit [post]
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting exam", "session_id", id)

	result, err := h.service.Submit(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResult returns the graded result of a finished session
// @Summary Get exam result
// @Tags exams
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} services.ExamResult
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/result [get]
func (h *ExamHandler) GetResult(c *gin.Context) {
	userID, isAdmin, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetResult(c.Request.Context(), id, userID, isAdmin)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHistory lists the caller's past exam sessions
// @Summary Exam history
// @Tags exams
// @Produce json
// @Param course_id query int false "Filter by course"
// @Param status query string false "Filter by session status"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ListResponse
// @Router /exams [get]
func (h *ExamHandler) GetHistory(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	filters := repositories.SessionFilters{
		Limit:  limit,
		Offset: offset,
	}

	courseID, ok := parseOptionalUintQuery(c, "course_id")
	if !ok {
		return
	}
	filters.CourseID = courseID

	if raw := c.Query("status"); raw != "" {
		status := models.SessionStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid status filter",
			})
			return
		}
		filters.Status = &status
	}

	sessions, total, err := h.service.History(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: sessions, Total: total})
}
