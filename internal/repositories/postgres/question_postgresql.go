package postgres

import (
	"context"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q QuestionPostgreSQL) GetByExam(ctx context.Context, examID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := q.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("id asc").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}
