package postgres

import (
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	exam       repositories.ExamRepository
	question   repositories.QuestionRepository
	submission repositories.SubmissionRepository
	role       repositories.RoleRepository
	user       repositories.UserRepository
}

// NewRepository builds the postgres-backed repository aggregate.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		exam:       NewExamPostgreSQL(db),
		question:   NewQuestionPostgreSQL(db),
		submission: NewSubmissionPostgreSQL(db),
		role:       NewRolePostgreSQL(db),
		user:       NewUserPostgreSQL(db),
	}
}

func (r *gormRepository) Exam() repositories.ExamRepository             { return r.exam }
func (r *gormRepository) Question() repositories.QuestionRepository     { return r.question }
func (r *gormRepository) Submission() repositories.SubmissionRepository { return r.submission }
func (r *gormRepository) Role() repositories.RoleRepository             { return r.role }
func (r *gormRepository) User() repositories.UserRepository             { return r.user }
