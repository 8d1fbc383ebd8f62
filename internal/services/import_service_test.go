package services

import (
	"context"
	"encoding/csv"
	"log/slog"
	"strings"
	"testing"

	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestImportService(repo *MockRepository) (*importExportService, *events.MemoryPublisher) {
	publisher := &events.MemoryPublisher{}
	svc := NewImportExportService(repo, publisher, slog.Default(), validator.New()).(*importExportService)
	return svc, publisher
}

const importMarkdown = `## Question 1

**Question**
What does a write-ahead log protect against?

**Options**
A. Crash data loss
B. Slow reads
C. Stale caches

**Correct Answer**
A

**Explanation**
Changes are durable before they apply.

---

## Question 2

**Question**
Pick the consensus protocols.

**Options**
A. Raft
B. Paxos
C. DNS

**Correct Answer**
A and B
`

func TestImportQuestions_Markdown(t *testing.T) {
	repo := NewMockRepository()
	svc, publisher := newTestImportService(repo)

	repo.importJob.On("Create", mock.Anything, mock.AnythingOfType("*models.ImportJob")).Return(nil)
	repo.importJob.On("Update", mock.Anything, mock.AnythingOfType("*models.ImportJob")).Return(nil)
	createdBy := "user-1"
	repo.question.On("List", mock.Anything, repositories.QuestionFilters{CreatedBy: &createdBy}).
		Return([]*models.Question{}, int64(0), nil)
	repo.question.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*models.Question")).Return(nil)

	summary, err := svc.ImportQuestions(context.Background(), &ImportRequest{
		Reader:   strings.NewReader(importMarkdown),
		FileName: "bank.md",
		FileSize: int64(len(importMarkdown)),
		UserID:   "user-1",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalBlocks)
	assert.Equal(t, 2, summary.ImportedCount)
	assert.Equal(t, 0, summary.SkippedCount)

	require.Len(t, summary.Questions, 2)
	assert.Equal(t, "user-1", summary.Questions[0].CreatedBy)
	assert.Equal(t, models.QuestionSingle, summary.Questions[0].ResolvedType())
	assert.Equal(t, models.QuestionMultiple, summary.Questions[1].ResolvedType())

	require.Len(t, publisher.Events, 1)
	assert.Equal(t, events.EventImportCompleted, publisher.Events[0].Type)

	repo.question.AssertExpectations(t)
	repo.importJob.AssertExpectations(t)
}

func TestImportQuestions_EmptyFile(t *testing.T) {
	repo := NewMockRepository()
	svc, _ := newTestImportService(repo)

	_, err := svc.ImportQuestions(context.Background(), &ImportRequest{
		Reader:   strings.NewReader(""),
		FileName: "bank.md",
		UserID:   "user-1",
	})

	assert.ErrorIs(t, err, ErrImportEmptyFile)
	repo.importJob.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImportQuestions_UnknownCourse(t *testing.T) {
	repo := NewMockRepository()
	svc, _ := newTestImportService(repo)

	courseID := uint(42)
	repo.course.On("GetByID", mock.Anything, courseID).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.ImportQuestions(context.Background(), &ImportRequest{
		Reader:   strings.NewReader(importMarkdown),
		FileName: "bank.md",
		UserID:   "user-1",
		CourseID: &courseID,
	})

	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestImportQuestions_UnsupportedFormat(t *testing.T) {
	repo := NewMockRepository()
	svc, publisher := newTestImportService(repo)

	repo.importJob.On("Create", mock.Anything, mock.AnythingOfType("*models.ImportJob")).Return(nil)
	repo.importJob.On("Update", mock.Anything, mock.MatchedBy(func(job *models.ImportJob) bool {
		return job.Status == models.ImportFailed
	})).Return(nil)

	_, err := svc.ImportQuestions(context.Background(), &ImportRequest{
		Reader:   strings.NewReader("%PDF-1.4"),
		FileName: "bank.pdf",
		UserID:   "user-1",
	})

	require.Error(t, err)
	require.Len(t, publisher.Events, 1)
	assert.Equal(t, events.EventImportFailed, publisher.Events[0].Type)
	repo.importJob.AssertExpectations(t)
}

func TestImportQuestions_InvalidQuestionsSkipped(t *testing.T) {
	// question 2 references an option that does not exist; it must be
	// skipped with a warning while question 1 imports
	content := `## Question 1

**Question**
Valid one?

**Options**
A. Yes
B. No

**Correct Answer**
A

---

## Question 2

**Question**
Broken one?

**Options**
A. Yes
B. No

**Correct Answer**
Z
`
	repo := NewMockRepository()
	svc, _ := newTestImportService(repo)

	repo.importJob.On("Create", mock.Anything, mock.AnythingOfType("*models.ImportJob")).Return(nil)
	repo.importJob.On("Update", mock.Anything, mock.AnythingOfType("*models.ImportJob")).Return(nil)
	createdBy := "user-1"
	repo.question.On("List", mock.Anything, repositories.QuestionFilters{CreatedBy: &createdBy}).
		Return([]*models.Question{}, int64(0), nil)
	repo.question.On("CreateBatch", mock.Anything, mock.MatchedBy(func(questions []*models.Question) bool {
		return len(questions) == 1
	})).Return(nil)

	summary, err := svc.ImportQuestions(context.Background(), &ImportRequest{
		Reader:   strings.NewReader(content),
		FileName: "bank.md",
		UserID:   "user-1",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ImportedCount)
	assert.Equal(t, 1, summary.SkippedCount)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 2, summary.Errors[0].Number)
	assert.Contains(t, summary.Errors[0].Message, "does not reference an option")
}

func TestImportQuestions_RenumbersAgainstExisting(t *testing.T) {
	repo := NewMockRepository()
	svc, _ := newTestImportService(repo)

	courseID := uint(7)
	repo.course.On("GetByID", mock.Anything, courseID).Return(&models.Course{ID: courseID}, nil)
	repo.importJob.On("Create", mock.Anything, mock.AnythingOfType("*models.ImportJob")).Return(nil)
	repo.importJob.On("Update", mock.Anything, mock.AnythingOfType("*models.ImportJob")).Return(nil)
	repo.question.On("GetByCourse", mock.Anything, courseID).Return([]*models.Question{
		{Number: 1}, {Number: 2},
	}, nil)

	var saved []*models.Question
	repo.question.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*models.Question")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).([]*models.Question)
		}).Return(nil)

	summary, err := svc.ImportQuestions(context.Background(), &ImportRequest{
		Reader:   strings.NewReader(importMarkdown),
		FileName: "bank.md",
		UserID:   "user-1",
		CourseID: &courseID,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.ImportedCount)
	require.Len(t, saved, 2)
	// numbers 1 and 2 are taken, so the import shifts past them
	assert.Equal(t, 3, saved[0].Number)
	assert.Equal(t, 4, saved[1].Number)
	assert.Equal(t, &courseID, saved[0].CourseID)
}

func TestGetImportJob_Ownership(t *testing.T) {
	repo := NewMockRepository()
	svc, _ := newTestImportService(repo)

	job := &models.ImportJob{ID: "job-1", UserID: "owner"}
	repo.importJob.On("GetByID", mock.Anything, "job-1").Return(job, nil)

	got, err := svc.GetImportJob(context.Background(), "job-1", "owner", false)
	require.NoError(t, err)
	assert.Equal(t, job, got)

	_, err = svc.GetImportJob(context.Background(), "job-1", "someone-else", false)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err = svc.GetImportJob(context.Background(), "job-1", "someone-else", true)
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestExportQuestionsCSV_RoundTripHeader(t *testing.T) {
	repo := NewMockRepository()
	svc, _ := newTestImportService(repo)

	createdBy := "user-1"
	repo.question.On("List", mock.Anything, repositories.QuestionFilters{SortBy: "number", CreatedBy: &createdBy}).
		Return([]*models.Question{
			{
				Number: 1,
				Prompt: "Order the phases",
				Options: []models.Option{
					{Label: "A", Text: "Plan"},
					{Label: "B", Text: "Build"},
					{Label: "C", Text: "Run"},
				},
				CorrectAnswer: []string{"A", "B", "C"},
				Type:          models.QuestionOrder,
			},
		}, int64(1), nil)

	data, err := svc.ExportQuestionsCSV(context.Background(), nil, "user-1", false)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])

	row := records[1]
	assert.Equal(t, "1", row[0])
	assert.Equal(t, "Order the phases", row[1])
	assert.Equal(t, `{"A": "Plan", "B": "Build", "C": "Run"}`, row[2])
	assert.Equal(t, "A -> B -> C", row[3])
	assert.Equal(t, "order", row[5])
}

func TestQuestionToRow_MatchingKeepsAnswerOrder(t *testing.T) {
	question := &models.Question{
		Number: 3,
		Prompt: "Match tools to jobs",
		Options: []models.Option{
			{Label: "A", Text: "Hammer"},
			{Label: "B", Text: "Saw"},
		},
		CorrectAnswer: []string{"B", "A"},
		SubQuestions:  []string{"Cutting", "Nailing"},
		Type:          models.QuestionMatching,
	}

	row := questionToRow(question)
	assert.Equal(t, "B, A", row[3])
	assert.Equal(t, "Cutting|Nailing", row[6])
	assert.Equal(t, "matching", row[5])
}

func TestExportResultsExcel_RequiresOwnership(t *testing.T) {
	repo := NewMockRepository()
	svc, _ := newTestImportService(repo)

	repo.course.On("GetByID", mock.Anything, uint(5)).
		Return(&models.Course{ID: 5, CreatedBy: "owner"}, nil)

	_, err := svc.ExportResultsExcel(context.Background(), 5, "intruder", false)
	require.Error(t, err)
	var pe *PermissionError
	assert.ErrorAs(t, err, &pe)
}
