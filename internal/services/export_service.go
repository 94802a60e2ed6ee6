package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/identity"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService produces downloadable sheets for teachers: the results
// of an exam and its question bank. Only the exam creator can export.
type ExportService interface {
	ExportExamResults(ctx context.Context, examID uint, caller *identity.Identity) ([]byte, error)
	ExportExamQuestionsToCSV(ctx context.Context, examID uint, caller *identity.Identity) ([]byte, error)
	ExportExamQuestionsToExcel(ctx context.Context, examID uint, caller *identity.Identity) ([]byte, error)
}

type exportService struct {
	repo       repositories.Repository
	gatekeeper GatekeeperService
	logger     *slog.Logger
}

func NewExportService(repo repositories.Repository, gatekeeper GatekeeperService, logger *slog.Logger) ExportService {
	return &exportService{
		repo:       repo,
		gatekeeper: gatekeeper,
		logger:     logger,
	}
}

func (s *exportService) ExportExamResults(ctx context.Context, examID uint, caller *identity.Identity) ([]byte, error) {
	exam, err := s.ownedExam(ctx, examID, caller)
	if err != nil {
		return nil, err
	}

	submissions, _, err := s.repo.Submission().GetByExam(ctx, examID, repositories.SubmissionFilters{})
	if err != nil {
		return nil, NewStoreError(err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Student ID", "Student Name", "Session ID", "Submitted At", "End Reason",
		"Score (%)", "Correct", "Graded Questions",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, submission := range submissions {
		row := []interface{}{
			submission.StudentID,
			s.studentName(ctx, submission.StudentID),
			submission.SessionID,
			time.UnixMilli(submission.Timestamp).UTC().Format("2006-01-02 15:04:05"),
			submission.EndReason,
			submission.Score,
			submission.CorrectCount,
			submission.TotalGraded,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported exam results",
		"exam_id", examID,
		"title", exam.Title,
		"submission_count", len(submissions))

	return buf.Bytes(), nil
}

func (s *exportService) ExportExamQuestionsToCSV(ctx context.Context, examID uint, caller *identity.Identity) ([]byte, error) {
	questions, err := s.questionsForExport(ctx, examID, caller)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(questionExportHeaders); err != nil {
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

	return []byte(buf.String()), nil
}

func (s *exportService) ExportExamQuestionsToExcel(ctx context.Context, examID uint, caller *identity.Identity) ([]byte, error) {
	questions, err := s.questionsForExport(ctx, examID, caller)
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

	for i, header := range questionExportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}
	for rowIndex, question := range questions {
		for colIndex, value := range questionToRow(question) {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), nil
}

// ===== HELPER FUNCTIONS =====

var questionExportHeaders = []string{
	"Question Type", "Question Text", "Option A", "Option B", "Option C", "Option D",
	"Correct Answer", "Code Template",
}

func (s *exportService) ownedExam(ctx context.Context, examID uint, caller *identity.Identity) (*models.Exam, error) {
	if err := s.gatekeeper.Authorize(ctx, caller, models.RoleTeacher); err != nil {
		return nil, err
	}

	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, NewStoreError(err)
	}
	if exam.CreatedBy != caller.UID {
		return nil, NewDeniedError(caller.UID, string(models.RoleTeacher), "not the exam creator")
	}
	return exam, nil
}

// studentName resolves the stored profile name for a submission row.
// Rows are not lost over a missing or unreadable profile.
func (s *exportService) studentName(ctx context.Context, studentID string) string {
	user, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		return ""
	}
	return user.FullName
}

func (s *exportService) questionsForExport(ctx context.Context, examID uint, caller *identity.Identity) ([]*models.Question, error) {
	if _, err := s.ownedExam(ctx, examID, caller); err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().GetByExam(ctx, examID)
	if err != nil {
		return nil, NewStoreError(err)
	}
	return questions, nil
}

func questionToRow(question *models.Question) []string {
	row := make([]string, len(questionExportHeaders))

	row[0] = string(question.Type)
	row[1] = question.Text

	for i, option := range question.Options {
		if i < 4 {
			row[2+i] = option
		}
	}

	switch question.Type {
	case models.QuestionCoding:
		row[7] = question.CodeTemplate
	default:
		row[6] = question.CorrectAnswer
	}

	return row
}
