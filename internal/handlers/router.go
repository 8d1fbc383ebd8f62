package handlers

import (
	"net/http"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	questionHandler *QuestionHandler
	courseHandler   *CourseHandler
	examHandler     *ExamHandler
	importHandler   *ImportExportHandler
}

func NewHandlerManager(
	questionService services.QuestionService,
	courseService services.CourseService,
	examService services.ExamService,
	importService services.ImportExportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		questionHandler: NewQuestionHandler(questionService, logger),
		courseHandler:   NewCourseHandler(courseService, logger),
		examHandler:     NewExamHandler(examService, logger),
		importHandler:   NewImportExportHandler(importService, logger),
	}
}

// SetupRoutes sets up all API routes. The auth middleware must populate
// user_id and is_admin in the gin context.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "exam-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(auth)
	{
		// Question bank routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		// Course routes
		courses := v1.Group("/courses")
		{
			courses.POST("", hm.courseHandler.CreateCourse)
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.PUT("/:id", hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", hm.courseHandler.DeleteCourse)
			courses.GET("/:id/stats", hm.courseHandler.GetCourseStats)
		}

		// Exam session routes
		exams := v1.Group("/exams")
		{
			exams.POST("", hm.examHandler.StartExam)
			exams.GET("", hm.examHandler.GetHistory)
			exams.GET("/:id", hm.examHandler.GetSession)
			exams.PUT("/:id/answers", hm.examHandler.SaveAnswer)
			exams.POST("/:id/submit", hm.examHandler.SubmitExam)
			exams.GET("/:id/result", hm.examHandler.GetResult)
		}

		// Import routes
		imports := v1.Group("/import")
		{
			imports.POST("", hm.importHandler.ImportQuestions)
			imports.GET("/jobs", hm.importHandler.ListImportJobs)
			imports.GET("/jobs/:id", hm.importHandler.GetImportJob)
		}

		// Export routes
		export := v1.Group("/export")
		{
			export.GET("/questions.csv", hm.importHandler.ExportQuestionsCSV)
			export.GET("/questions.xlsx", hm.importHandler.ExportQuestionsExcel)
			export.GET("/courses/:id/results.xlsx", hm.importHandler.ExportResultsExcel)
		}
	}
}
