package services

import (
	"context"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// MockExamRepository is a mock implementation of ExamRepository
type MockExamRepository struct {
	mock.Mock
}

func (m *MockExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	args := m.Called(ctx, exam)
	return args.Error(0)
}

func (m *MockExamRepository) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exam), args.Error(1)
}

func (m *MockExamRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Exam, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exam), args.Error(1)
}

func (m *MockExamRepository) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Exam), args.Get(1).(int64), args.Error(2)
}

func (m *MockExamRepository) GetByCreator(ctx context.Context, creatorID string, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	args := m.Called(ctx, creatorID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Exam), args.Get(1).(int64), args.Error(2)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByExam(ctx context.Context, examID uint) ([]*models.Question, error) {
	args := m.Called(ctx, examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

// MockSubmissionRepository is a mock implementation of SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetBySession(ctx context.Context, sessionID string) (*models.Submission, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) GetByExam(ctx context.Context, examID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	args := m.Called(ctx, examID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Submission), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubmissionRepository) GetByStudent(ctx context.Context, studentID string, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	args := m.Called(ctx, studentID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Submission), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubmissionRepository) CountByExamAndStudent(ctx context.Context, examID uint, studentID string) (int, error) {
	args := m.Called(ctx, examID, studentID)
	return args.Int(0), args.Error(1)
}

// MockRoleRepository is a mock implementation of RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Get(ctx context.Context, uid string, role models.UserRole) (*models.RoleRecord, error) {
	args := m.Called(ctx, uid, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoleRecord), args.Error(1)
}

func (m *MockRoleRepository) Upsert(ctx context.Context, record *models.RoleRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, uid string, role models.UserRole) error {
	args := m.Called(ctx, uid, role)
	return args.Error(0)
}

// MockRepository aggregates the entity mocks behind the Repository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockRepository struct {
	examRepo       *MockExamRepository
	questionRepo   *MockQuestionRepository
	submissionRepo *MockSubmissionRepository
	roleRepo       *MockRoleRepository
	userRepo       *MockUserRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		examRepo:       &MockExamRepository{},
		questionRepo:   &MockQuestionRepository{},
		submissionRepo: &MockSubmissionRepository{},
		roleRepo:       &MockRoleRepository{},
		userRepo:       &MockUserRepository{},
	}
}

func (m *MockRepository) Exam() repositories.ExamRepository             { return m.examRepo }
func (m *MockRepository) Question() repositories.QuestionRepository     { return m.questionRepo }
func (m *MockRepository) Submission() repositories.SubmissionRepository { return m.submissionRepo }
func (m *MockRepository) Role() repositories.RoleRepository             { return m.roleRepo }
func (m *MockRepository) User() repositories.UserRepository             { return m.userRepo }
