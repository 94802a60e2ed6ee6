package repositories

import (
	"context"
	"errors"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates per-entity repositories over a single store.
type Repository interface {
	Exam() ExamRepository
	Question() QuestionRepository
	Submission() SubmissionRepository
	Role() RoleRepository
	User() UserRepository
}

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	CreatedBy *string `json:"created_by"`
	OpenAfter *int64  `json:"open_after"` // end_time strictly greater than this instant
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	SortBy    string  `json:"sort_by"`    // "created_at", "title", "start_time"
	SortOrder string  `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	ExamID    *uint   `json:"exam_id"`
	StudentID *string `json:"student_id"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

// ===== PER-ENTITY INTERFACES =====

type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Exam, error)
	List(ctx context.Context, filters ExamFilters) ([]*models.Exam, int64, error)
	GetByCreator(ctx context.Context, creatorID string, filters ExamFilters) ([]*models.Exam, int64, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByExam(ctx context.Context, examID uint) ([]*models.Question, error)
}

type SubmissionRepository interface {
	// Create persists a finalized submission. The session id carries a
	// unique constraint so a submission is recorded at most once.
	Create(ctx context.Context, submission *models.Submission) error
	GetBySession(ctx context.Context, sessionID string) (*models.Submission, error)
	GetByExam(ctx context.Context, examID uint, filters SubmissionFilters) ([]*models.Submission, int64, error)
	GetByStudent(ctx context.Context, studentID string, filters SubmissionFilters) ([]*models.Submission, int64, error)
	CountByExamAndStudent(ctx context.Context, examID uint, studentID string) (int, error)
}

type RoleRepository interface {
	Get(ctx context.Context, uid string, role models.UserRole) (*models.RoleRecord, error)
	Upsert(ctx context.Context, record *models.RoleRecord) error
	Delete(ctx context.Context, uid string, role models.UserRole) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

// IsNotFoundError reports whether a store error means the record is absent.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
