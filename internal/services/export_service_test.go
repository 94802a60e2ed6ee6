package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/identity"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestExportService_ExamResults(t *testing.T) {
	teacher := &identity.Identity{UID: "teacher-uid"}
	exam := &models.Exam{ID: 3, Title: "Final", CreatedBy: "teacher-uid"}

	t.Run("creator exports submission rows", func(t *testing.T) {
		mockRepo := newMockRepository()
		grantTeacher(mockRepo, "teacher-uid")
		mockRepo.examRepo.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)
		mockRepo.submissionRepo.On("GetByExam", mock.Anything, exam.ID, mock.Anything).Return(
			[]*models.Submission{
				{SessionID: "s1", ExamID: 3, StudentID: "student-1", Timestamp: 1_700_000_000_000,
					Score: 66.67, CorrectCount: 2, TotalGraded: 3, EndReason: EndReasonSubmitted},
				{SessionID: "s2", ExamID: 3, StudentID: "student-2", Timestamp: 1_700_000_100_000,
					Score: 0, CorrectCount: 0, TotalGraded: 3, EndReason: EndReasonExpired},
			}, int64(2), nil)
		mockRepo.userRepo.On("GetByID", mock.Anything, "student-1").Return(
			&models.User{ID: "student-1", FullName: "Ada Lovelace"}, nil)
		mockRepo.userRepo.On("GetByID", mock.Anything, "student-2").Return(nil, gorm.ErrRecordNotFound)

		svc := NewExportService(mockRepo, NewGatekeeperService(mockRepo, testLogger()), testLogger())

		data, err := svc.ExportExamResults(context.Background(), exam.ID, teacher)
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Results")
		require.NoError(t, err)
		require.Len(t, rows, 3) // header + 2 submissions
		assert.Equal(t, "Student ID", rows[0][0])
		assert.Equal(t, "student-1", rows[1][0])
		assert.Equal(t, "Ada Lovelace", rows[1][1])
		assert.Equal(t, "expired", rows[2][4])
	})

	t.Run("non-creator is denied", func(t *testing.T) {
		other := &identity.Identity{UID: "other-uid"}
		mockRepo := newMockRepository()
		grantTeacher(mockRepo, "other-uid")
		mockRepo.examRepo.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)

		svc := NewExportService(mockRepo, NewGatekeeperService(mockRepo, testLogger()), testLogger())

		_, err := svc.ExportExamResults(context.Background(), exam.ID, other)
		assert.True(t, IsDenied(err))
	})
}

func TestExportService_QuestionsCSV(t *testing.T) {
	teacher := &identity.Identity{UID: "teacher-uid"}
	exam := &models.Exam{ID: 3, Title: "Final", CreatedBy: "teacher-uid"}

	mockRepo := newMockRepository()
	grantTeacher(mockRepo, "teacher-uid")
	mockRepo.examRepo.On("GetByID", mock.Anything, exam.ID).Return(exam, nil)
	mockRepo.questionRepo.On("GetByExam", mock.Anything, exam.ID).Return([]*models.Question{
		{ID: 1, Text: "What is 2 + 2?", Type: models.QuestionMCQ,
			Options: datatypes.NewJSONSlice([]string{"3", "4"}), CorrectAnswer: "4"},
		{ID: 2, Text: "Implement fizzbuzz", Type: models.QuestionCoding,
			CodeTemplate: "func fizzbuzz(n int) string { return \"\" }"},
	}, nil)

	svc := NewExportService(mockRepo, NewGatekeeperService(mockRepo, testLogger()), testLogger())

	data, err := svc.ExportExamQuestionsToCSV(context.Background(), exam.ID, teacher)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "Question Type")
	assert.Contains(t, out, "What is 2 + 2?")
	assert.Contains(t, out, "fizzbuzz")
}
