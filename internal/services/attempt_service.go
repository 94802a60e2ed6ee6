package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/events"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/identity"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
	"github.com/google/uuid"
)

// AttemptService owns the live attempt sessions: starting them inside the
// exam window, routing answers, and making sure every session finalizes
// and its submission record reaches the store exactly once.
type AttemptService interface {
	Start(ctx context.Context, examID uint, caller *identity.Identity) (*AttemptSession, error)
	RecordAnswer(ctx context.Context, sessionID string, questionID uint, value string, caller *identity.Identity) error
	Submit(ctx context.Context, sessionID string, caller *identity.Identity) (*models.Submission, error)
	TimeRemaining(ctx context.Context, sessionID string, caller *identity.Identity) (time.Duration, error)
	GetSession(ctx context.Context, sessionID string, caller *identity.Identity) (*AttemptSession, error)

	MySubmissions(ctx context.Context, caller *identity.Identity, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error)
	ExamSubmissions(ctx context.Context, examID uint, caller *identity.Identity, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error)

	Close()
}

type sessionEntry struct {
	session *AttemptSession
	cancel  context.CancelFunc

	mu        sync.Mutex
	persisted bool
}

type attemptService struct {
	repo       repositories.Repository
	gatekeeper GatekeeperService
	publisher  events.EventPublisher
	logger     *slog.Logger

	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

func NewAttemptService(
	repo repositories.Repository,
	gatekeeper GatekeeperService,
	publisher events.EventPublisher,
	logger *slog.Logger,
) AttemptService {
	return &attemptService{
		repo:       repo,
		gatekeeper: gatekeeper,
		publisher:  publisher,
		logger:     logger,
		entries:    make(map[string]*sessionEntry),
	}
}

func (s *attemptService) Start(ctx context.Context, examID uint, caller *identity.Identity) (*AttemptSession, error) {
	s.logger.Info("Starting attempt", "exam_id", examID, "student_id", caller.UID)

	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, NewStoreError(err)
	}

	// An in-progress session for the same exam is resumed, not duplicated.
	if existing := s.findActive(examID, caller.UID); existing != nil {
		s.logger.Info("Resuming existing session", "session_id", existing.ID)
		return existing, nil
	}

	// Attempt cap, counted over persisted submissions per (exam, student).
	count, err := s.repo.Submission().CountByExamAndStudent(ctx, examID, caller.UID)
	if err != nil {
		return nil, NewStoreError(err)
	}
	if count >= exam.MaxAttempts {
		return nil, ErrAttemptLimitExceeded
	}

	session, err := StartSession(exam, exam.Questions, caller.UID, time.Now())
	if err != nil {
		return nil, err
	}

	timerCtx, cancel := context.WithCancel(context.Background())
	entry := &sessionEntry{session: session, cancel: cancel}

	session.SetFinalizeHook(func(record *models.Submission) {
		s.onFinalized(entry, record)
	})

	s.mu.Lock()
	s.entries[session.ID] = entry
	s.mu.Unlock()

	go session.RunTimer(timerCtx)

	s.publishAttemptStarted(ctx, session, exam)

	s.logger.Info("Attempt started",
		"session_id", session.ID,
		"exam_id", examID,
		"student_id", caller.UID,
		"deadline", session.Deadline)
	return session, nil
}

func (s *attemptService) RecordAnswer(ctx context.Context, sessionID string, questionID uint, value string, caller *identity.Identity) error {
	entry, err := s.ownedEntry(sessionID, caller)
	if err != nil {
		return err
	}
	return entry.session.RecordAnswer(questionID, value)
}

func (s *attemptService) Submit(ctx context.Context, sessionID string, caller *identity.Identity) (*models.Submission, error) {
	entry, err := s.ownedEntry(sessionID, caller)
	if err != nil {
		return nil, err
	}

	record, err := entry.session.Submit(time.Now())
	if err != nil {
		return nil, err
	}

	// The session is terminal regardless of whether the write landed; a
	// persistence failure is surfaced as retryable, never rolled back.
	if err := s.persistRecord(ctx, entry, record); err != nil {
		return record, NewStoreError(err)
	}

	s.logger.Info("Attempt submitted",
		"session_id", sessionID,
		"score", record.Score,
		"end_reason", record.EndReason)
	return record, nil
}

func (s *attemptService) TimeRemaining(ctx context.Context, sessionID string, caller *identity.Identity) (time.Duration, error) {
	entry, err := s.ownedEntry(sessionID, caller)
	if err != nil {
		return 0, err
	}
	remaining, _ := entry.session.Tick(time.Now())
	return remaining, nil
}

func (s *attemptService) GetSession(ctx context.Context, sessionID string, caller *identity.Identity) (*AttemptSession, error) {
	entry, err := s.ownedEntry(sessionID, caller)
	if err != nil {
		return nil, err
	}
	return entry.session, nil
}

func (s *attemptService) MySubmissions(ctx context.Context, caller *identity.Identity, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	submissions, total, err := s.repo.Submission().GetByStudent(ctx, caller.UID, filters)
	if err != nil {
		return nil, 0, NewStoreError(err)
	}
	return submissions, total, nil
}

func (s *attemptService) ExamSubmissions(ctx context.Context, examID uint, caller *identity.Identity, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	if err := s.gatekeeper.Authorize(ctx, caller, models.RoleTeacher); err != nil {
		return nil, 0, err
	}

	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, 0, ErrExamNotFound
		}
		return nil, 0, NewStoreError(err)
	}
	if exam.CreatedBy != caller.UID {
		return nil, 0, NewDeniedError(caller.UID, string(models.RoleTeacher), "not the exam creator")
	}

	submissions, total, err := s.repo.Submission().GetByExam(ctx, examID, filters)
	if err != nil {
		return nil, 0, NewStoreError(err)
	}
	return submissions, total, nil
}

// Close tears down every live session. Timers are cancelled
// unconditionally regardless of session state.
func (s *attemptService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		entry.cancel()
	}
}

// ===== INTERNALS =====

func (s *attemptService) ownedEntry(sessionID string, caller *identity.Identity) (*sessionEntry, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrAttemptNotFound
	}
	if entry.session.StudentID != caller.UID {
		// A session is owned exclusively by the student who created it.
		return nil, ErrAttemptNotFound
	}
	return entry, nil
}

func (s *attemptService) findActive(examID uint, studentID string) *AttemptSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.entries {
		sess := entry.session
		if sess.Exam.ID == examID && sess.StudentID == studentID && sess.State() == SessionInProgress {
			return sess
		}
	}
	return nil
}

// onFinalized runs exactly once per session, from whichever finalize path
// won. It releases the timer, persists the record, and fans out the
// finalized event.
func (s *attemptService) onFinalized(entry *sessionEntry, record *models.Submission) {
	entry.cancel()

	// Detached context: the session may be finalized by its own timer
	// long after any request context is gone.
	if err := s.persistRecord(context.Background(), entry, record); err != nil {
		s.logger.Error("Failed to persist submission; attempt remains finalized",
			"session_id", record.SessionID,
			"error", err)
	}

	s.publishAttemptFinalized(record)
}

// persistRecord writes the submission at most once. It may be retried
// after a failure; the unique session id makes a duplicate write a no-op.
// A failed write whose record already landed (a retry after a dropped
// response, say) is resolved by reading the session id back.
func (s *attemptService) persistRecord(ctx context.Context, entry *sessionEntry, record *models.Submission) error {
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.persisted {
		return nil
	}
	if err := s.repo.Submission().Create(ctx, record); err != nil {
		if existing, lookupErr := s.repo.Submission().GetBySession(ctx, record.SessionID); lookupErr == nil && existing != nil {
			entry.persisted = true
			return nil
		}
		return err
	}
	entry.persisted = true
	return nil
}

func (s *attemptService) publishAttemptStarted(ctx context.Context, session *AttemptSession, exam *models.Exam) {
	event := &events.ExamEvent{
		ID:        uuid.NewString(),
		Type:      events.EventAttemptStarted,
		Timestamp: time.Now(),
		Source:    "exam-portal-service",
		Version:   "1.0",
		Data: events.AttemptStartedEvent{
			SessionID: session.ID,
			ExamID:    exam.ID,
			ExamTitle: exam.Title,
			StudentID: session.StudentID,
			StartedAt: time.UnixMilli(session.StartedAt),
			Deadline:  session.Deadline,
		},
	}
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish attempt started event", "session_id", session.ID, "error", err)
	}
}

func (s *attemptService) publishAttemptFinalized(record *models.Submission) {
	event := &events.ExamEvent{
		ID:        uuid.NewString(),
		Type:      events.EventAttemptFinalized,
		Timestamp: time.Now(),
		Source:    "exam-portal-service",
		Version:   "1.0",
		Data: events.AttemptFinalizedEvent{
			SessionID:    record.SessionID,
			ExamID:       record.ExamID,
			StudentID:    record.StudentID,
			EndReason:    record.EndReason,
			Score:        record.Score,
			CorrectCount: record.CorrectCount,
			TotalGraded:  record.TotalGraded,
			FinalizedAt:  record.Timestamp,
		},
	}
	if err := s.publisher.PublishExamEvent(context.Background(), event); err != nil {
		s.logger.Warn("Failed to publish attempt finalized event", "session_id", record.SessionID, "error", err)
	}
}
