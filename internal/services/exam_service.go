package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/cache"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/events"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/identity"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	activeExamsCacheKey = "exams:active"
	activeExamsCacheTTL = 30 * time.Second
)

type CreateExamRequest struct {
	Title           string `json:"title" validate:"required,min=1,max=200"`
	StartTime       int64  `json:"start_time" validate:"required"`
	EndTime         int64  `json:"end_time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1,max=300"`
	MaxAttempts     int    `json:"max_attempts" validate:"omitempty,min=1,max=10"`
}

type CreateQuestionRequest struct {
	Text          string              `json:"text" validate:"required,min=1"`
	Type          models.QuestionType `json:"type" validate:"required,question_type"`
	Options       []string            `json:"options,omitempty"`
	CorrectAnswer string              `json:"correct_answer,omitempty"`
	CodeTemplate  string              `json:"code_template,omitempty"`
}

// ExamService owns exam definitions: creation by verified teachers,
// question management, and the student-facing listing filtered by the
// attempt window.
type ExamService interface {
	Create(ctx context.Context, req *CreateExamRequest, caller *identity.Identity) (*models.Exam, error)
	GetByID(ctx context.Context, id uint, caller *identity.Identity) (*models.Exam, error)
	ListActive(ctx context.Context, now time.Time) ([]*models.Exam, error)
	GetByCreator(ctx context.Context, caller *identity.Identity, filters repositories.ExamFilters) ([]*models.Exam, int64, error)

	AddQuestion(ctx context.Context, examID uint, req *CreateQuestionRequest, caller *identity.Identity) (*models.Question, error)
	GetQuestions(ctx context.Context, examID uint, caller *identity.Identity) ([]*models.Question, error)
}

type examService struct {
	repo       repositories.Repository
	gatekeeper GatekeeperService
	publisher  events.EventPublisher
	cache      cache.CacheService
	logger     *slog.Logger
	validator  *validator.Validator
}

func NewExamService(
	repo repositories.Repository,
	gatekeeper GatekeeperService,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	logger *slog.Logger,
	v *validator.Validator,
) ExamService {
	return &examService{
		repo:       repo,
		gatekeeper: gatekeeper,
		publisher:  publisher,
		cache:      cacheService,
		logger:     logger,
		validator:  v,
	}
}

func (s *examService) Create(ctx context.Context, req *CreateExamRequest, caller *identity.Identity) (*models.Exam, error) {
	s.logger.Info("Scheduling exam", "title", req.Title, "created_by", caller.UID)

	// Creation is gated on the verified teacher role; denial aborts before
	// anything is written.
	if err := s.gatekeeper.Authorize(ctx, caller, models.RoleTeacher); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.EndTime <= req.StartTime {
		return nil, NewValidationError("end_time", "must be after start time", req.EndTime)
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	exam := &models.Exam{
		Title:           req.Title,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		MaxAttempts:     maxAttempts,
		CreatedBy:       caller.UID,
		TeacherName:     caller.DisplayName,
	}

	if err := s.repo.Exam().Create(ctx, exam); err != nil {
		return nil, NewStoreError(err)
	}

	// Fresh exam invalidates the student-facing listing.
	if err := s.cache.Delete(ctx, activeExamsCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate exam cache", "error", err)
	}

	s.publishExamScheduled(ctx, exam)

	s.logger.Info("Exam scheduled", "exam_id", exam.ID, "title", exam.Title)
	return exam, nil
}

func (s *examService) GetByID(ctx context.Context, id uint, caller *identity.Identity) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, NewStoreError(err)
	}

	// The reference answers are the creator's alone. Everyone else gets
	// the exam with the answer key stripped.
	if exam.CreatedBy != caller.UID {
		for i := range exam.Questions {
			exam.Questions[i].RedactAnswerKey()
		}
	}
	return exam, nil
}

// ListActive returns exams whose window has not yet closed, annotated
// with whether they are currently open for attempts.
func (s *examService) ListActive(ctx context.Context, now time.Time) ([]*models.Exam, error) {
	nowMillis := now.UnixMilli()

	var exams []*models.Exam
	if err := s.cache.Get(ctx, activeExamsCacheKey, &exams); err == nil {
		s.annotate(exams, nowMillis)
		return exams, nil
	}

	filters := repositories.ExamFilters{OpenAfter: &nowMillis, SortBy: "start_time", SortOrder: "desc"}
	exams, _, err := s.repo.Exam().List(ctx, filters)
	if err != nil {
		return nil, NewStoreError(err)
	}

	if err := s.cache.Set(ctx, activeExamsCacheKey, exams, activeExamsCacheTTL); err != nil {
		s.logger.Warn("Failed to cache active exams", "error", err)
	}

	s.annotate(exams, nowMillis)
	return exams, nil
}

func (s *examService) GetByCreator(ctx context.Context, caller *identity.Identity, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	if err := s.gatekeeper.Authorize(ctx, caller, models.RoleTeacher); err != nil {
		return nil, 0, err
	}

	exams, total, err := s.repo.Exam().GetByCreator(ctx, caller.UID, filters)
	if err != nil {
		return nil, 0, NewStoreError(err)
	}
	return exams, total, nil
}

func (s *examService) AddQuestion(ctx context.Context, examID uint, req *CreateQuestionRequest, caller *identity.Identity) (*models.Question, error) {
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

	question := &models.Question{
		ExamID:        &examID,
		Text:          req.Text,
		Type:          req.Type,
		Options:       datatypes.NewJSONSlice(req.Options),
		CorrectAnswer: req.CorrectAnswer,
		CodeTemplate:  req.CodeTemplate,
		CreatedBy:     caller.UID,
	}

	// Malformed questions are rejected here, at creation time, never at
	// grading time.
	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, NewValidationError("question", err.Error(), req.Type)
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, NewStoreError(err)
	}

	s.logger.Info("Question added", "exam_id", examID, "question_id", question.ID, "type", question.Type)
	return question, nil
}

// GetQuestions returns the full question records, reference answers
// included, so it is gated to the exam's creator. Students only ever see
// questions through their attempt session, which redacts the answer key.
func (s *examService) GetQuestions(ctx context.Context, examID uint, caller *identity.Identity) ([]*models.Question, error) {
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

	questions, err := s.repo.Question().GetByExam(ctx, examID)
	if err != nil {
		return nil, NewStoreError(err)
	}
	return questions, nil
}

func (s *examService) annotate(exams []*models.Exam, nowMillis int64) {
	for _, exam := range exams {
		exam.IsOpen = exam.WindowContains(nowMillis)
	}
}

// publishExamScheduled fans the new exam out to subscribed students.
// Delivery is best-effort and never gates exam creation.
func (s *examService) publishExamScheduled(ctx context.Context, exam *models.Exam) {
	event := &events.ExamEvent{
		ID:        uuid.NewString(),
		Type:      events.EventExamScheduled,
		Timestamp: time.Now(),
		Source:    "exam-portal-service",
		Version:   "1.0",
		Data: events.ExamScheduledEvent{
			ExamID:      exam.ID,
			Title:       exam.Title,
			StartTime:   exam.StartTime,
			EndTime:     exam.EndTime,
			Duration:    exam.DurationMinutes,
			TeacherID:   exam.CreatedBy,
			TeacherName: exam.TeacherName,
		},
	}

	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish exam scheduled event",
			"exam_id", exam.ID,
			"error", fmt.Errorf("publish: %w", err))
	}
}
