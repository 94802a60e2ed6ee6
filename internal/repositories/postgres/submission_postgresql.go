package postgres

import (
	"context"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
	"gorm.io/gorm"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Create(submission).Error
}

func (s SubmissionPostgreSQL) GetBySession(ctx context.Context, sessionID string) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s SubmissionPostgreSQL) GetByExam(ctx context.Context, examID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	filters.ExamID = &examID
	return s.list(ctx, filters)
}

func (s SubmissionPostgreSQL) GetByStudent(ctx context.Context, studentID string, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	filters.StudentID = &studentID
	return s.list(ctx, filters)
}

func (s SubmissionPostgreSQL) CountByExamAndStudent(ctx context.Context, examID uint, studentID string) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s SubmissionPostgreSQL) list(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var submissions []*models.Submission
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Submission{})
	if filters.ExamID != nil {
		query = query.Where("exam_id = ?", *filters.ExamID)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("timestamp desc")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}
