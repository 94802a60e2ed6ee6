package postgres

import (
	"context"
	"fmt"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
	"gorm.io/gorm"
)

type ExamPostgreSQL struct {
	db *gorm.DB
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{db: db}
}

func (e ExamPostgreSQL) Create(ctx context.Context, exam *models.Exam) error {
	return e.db.WithContext(ctx).Create(exam).Error
}

func (e ExamPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	var exam models.Exam
	if err := e.db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e ExamPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Exam, error) {
	var exam models.Exam
	if err := e.db.WithContext(ctx).
		Preload("Questions").
		First(&exam, id).Error; err != nil {
		return nil, err
	}
	exam.QuestionsCount = len(exam.Questions)
	return &exam, nil
}

func (e ExamPostgreSQL) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var exams []*models.Exam
	var total int64

	// apply filter first
	query := e.db.WithContext(ctx).Model(&models.Exam{})
	query = e.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = e.applyPaginationAndSort(query, filters)

	if err := query.Find(&exams).Error; err != nil {
		return nil, 0, err
	}

	return exams, total, nil
}

func (e ExamPostgreSQL) GetByCreator(ctx context.Context, creatorID string, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	filters.CreatedBy = &creatorID
	return e.List(ctx, filters)
}

func (e ExamPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ExamFilters) *gorm.DB {
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.OpenAfter != nil {
		query = query.Where("end_time > ?", *filters.OpenAfter)
	}
	return query
}

// sortableExamColumns is the whitelist for ExamFilters.SortBy. Unknown
// values fall back to start_time.
var sortableExamColumns = map[string]bool{
	"created_at": true,
	"title":      true,
	"start_time": true,
}

// examOrderClause builds the ORDER BY clause from filter values. Only
// whitelisted column names ever reach the SQL text.
func examOrderClause(filters repositories.ExamFilters) string {
	sortBy := filters.SortBy
	if !sortableExamColumns[sortBy] {
		sortBy = "start_time"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}

func (e ExamPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.ExamFilters) *gorm.DB {
	query = query.Order(examOrderClause(filters))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
